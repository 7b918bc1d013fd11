package wire

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
)

func TestEncode_SensorFieldNames(t *testing.T) {
	request := UpdateConfigRequest{
		ID: "1964a231a4d14173",
		Config: []device.SensorConfiguration{{
			SensorID: 1,
			Schema: device.Schema{
				TypeID:    65521,
				Unit:      0,
				ValueType: device.ValueTypeBool,
				Name:      "temperature",
			},
			Event: device.Event{
				Change:         true,
				TimeSec:        5,
				LowerThreshold: 4.0,
				UpperThreshold: 10.0,
			},
		}},
	}

	body, err := Encode(request)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// The broker routes on these exact camelCase names.
	for _, field := range []string{
		`"sensorId":1`,
		`"typeId":65521`,
		`"valueType":3`,
		`"timeSec":5`,
		`"lowerThreshold":4`,
		`"upperThreshold":10`,
	} {
		if !strings.Contains(string(body), field) {
			t.Errorf("Encode() output missing %s: %s", field, body)
		}
	}
}

func TestConfigUpdateResponse_RoundTrip(t *testing.T) {
	original := ConfigUpdateResponse{
		ID:      "1964a231a4d14173",
		Changed: true,
		Config: []device.SensorConfiguration{{
			SensorID: 2,
			Schema:   device.Schema{TypeID: 3, Unit: 1, ValueType: device.ValueTypeFloat, Name: "humidity"},
			Event:    device.Event{Change: false, TimeSec: 30},
		}},
	}

	body, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	decoded, err := DecodeConfigUpdateResponse(body)
	if err != nil {
		t.Fatalf("DecodeConfigUpdateResponse() error = %v", err)
	}

	if decoded.ID != original.ID || decoded.Changed != original.Changed {
		t.Errorf("round trip mismatch: got %+v", decoded)
	}
	if len(decoded.Config) != 1 || decoded.Config[0] != original.Config[0] {
		t.Errorf("config round trip mismatch: got %+v", decoded.Config)
	}
}

func TestDecodeRegistrationResponse_NullableError(t *testing.T) {
	success, err := DecodeRegistrationResponse([]byte(
		`{"id":"1964a231a4d14173","token":"5b67ce6b-ef21-7013-3115-2d6297e1bd2b","error":null}`))
	if err != nil {
		t.Fatalf("DecodeRegistrationResponse() error = %v", err)
	}
	if success.Error != nil {
		t.Errorf("Error = %v, want nil", *success.Error)
	}
	if ErrorText(success.Error) != "" {
		t.Errorf("ErrorText() = %q, want empty", ErrorText(success.Error))
	}

	failure, err := DecodeRegistrationResponse([]byte(
		`{"id":"1964a231a4d14173","token":"","error":"thing is already registered"}`))
	if err != nil {
		t.Fatalf("DecodeRegistrationResponse() error = %v", err)
	}
	if ErrorText(failure.Error) != MsgDeviceExists {
		t.Errorf("ErrorText() = %q, want %q", ErrorText(failure.Error), MsgDeviceExists)
	}
}

func TestDecode_MalformedBody(t *testing.T) {
	if _, err := DecodeAuthResponse([]byte(`{not json`)); err == nil {
		t.Error("DecodeAuthResponse() expected error for malformed body")
	}
	if _, err := DecodeUnregistrationResponse([]byte(``)); err == nil {
		t.Error("DecodeUnregistrationResponse() expected error for empty body")
	}
}
