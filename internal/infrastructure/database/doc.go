// Package database opens the SQLite file backing the device store.
//
// # Configuration
//
// The store always runs with WAL journalling, NORMAL synchronous mode, a
// busy timeout and foreign keys on. Hosts running several device
// processes against one store file rely on the busy timeout to serialise
// writers instead of failing with a locked-database error.
//
// Schema setup belongs to the repository layer; this package only hands
// out a configured connection.
package database
