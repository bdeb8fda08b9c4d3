package aircon

import (
	"errors"
	"testing"
)

func TestProperty_PowerRead(t *testing.T) {
	p, ok := LookupProperty(PropPower)
	if !ok {
		t.Fatal("power property not registered")
	}

	if got := p.Read(DeviceState{Power: "On"}); got != true {
		t.Errorf("Read(power=On) = %v, want true", got)
	}
	if got := p.Read(DeviceState{Power: "Off"}); got != false {
		t.Errorf("Read(power=Off) = %v, want false", got)
	}
}

func TestProperty_PowerWrite(t *testing.T) {
	path, payload, err := WriteProjection(PropPower, true)
	if err != nil {
		t.Fatalf("WriteProjection() error = %v", err)
	}
	if path != "/" {
		t.Errorf("path = %q, want %q", path, "/")
	}
	op, ok := payload["Operation"].(map[string]any)
	if !ok {
		t.Fatalf("payload = %v, want Operation object", payload)
	}
	if op["power"] != "On" {
		t.Errorf("Operation.power = %v, want On", op["power"])
	}
}

func TestProperty_TargetTemperatureBounds(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{name: "minimum", value: 18.0, wantErr: false},
		{name: "maximum", value: 30.0, wantErr: false},
		{name: "int accepted", value: 24, wantErr: false},
		{name: "below range", value: 17.0, wantErr: true},
		{name: "above range", value: 31.0, wantErr: true},
		{name: "fractional step", value: 24.5, wantErr: true},
		{name: "wrong type", value: "24", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, payload, err := WriteProjection(PropTargetTemperature, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("WriteProjection(%v) expected error", tt.value)
				}
				if !errors.Is(err, ErrInvalidValue) {
					t.Errorf("error = %v, want ErrInvalidValue", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("WriteProjection(%v) error = %v", tt.value, err)
			}
			if path != "/temperatures/0" {
				t.Errorf("path = %q, want %q", path, "/temperatures/0")
			}
			if _, ok := payload["desired"]; !ok {
				t.Errorf("payload = %v, want desired key", payload)
			}
		})
	}
}

func TestProperty_OperatingState(t *testing.T) {
	tests := []struct {
		name string
		mode string
		want string
	}{
		{name: "cool", mode: "Cool", want: StateCooling},
		{name: "cool clean", mode: "CoolClean", want: StateCooling},
		{name: "dry", mode: "Dry", want: StateCooling},
		{name: "dry clean", mode: "DryClean", want: StateCooling},
		{name: "auto", mode: "Auto", want: StateCooling},
		{name: "wind", mode: "Wind", want: StateCooling},
		{name: "heat is idle", mode: "Heat", want: StateIdle},
		{name: "unknown is idle", mode: "Sleep", want: StateIdle},
	}

	p, ok := LookupProperty(PropOperatingState)
	if !ok {
		t.Fatal("operating_state property not registered")
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Read(DeviceState{Modes: []string{tt.mode}})
			if got != tt.want {
				t.Errorf("Read(mode=%s) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestProperty_OperatingStateNoModes(t *testing.T) {
	p, _ := LookupProperty(PropOperatingState)
	if got := p.Read(DeviceState{}); got != StateIdle {
		t.Errorf("Read(no modes) = %v, want %v", got, StateIdle)
	}
}

func TestProperty_ModeWrite(t *testing.T) {
	path, payload, err := WriteProjection(PropMode, "Cool")
	if err != nil {
		t.Fatalf("WriteProjection() error = %v", err)
	}
	if path != "/mode" {
		t.Errorf("path = %q, want %q", path, "/mode")
	}
	modes, ok := payload["modes"].([]string)
	if !ok || len(modes) != 1 || modes[0] != "Cool" {
		t.Errorf("payload[modes] = %v, want [Cool]", payload["modes"])
	}

	if _, _, err := WriteProjection(PropMode, "Turbo"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("WriteProjection(Turbo) error = %v, want ErrInvalidValue", err)
	}
}

func TestProperty_SwingProjections(t *testing.T) {
	p, _ := LookupProperty(PropSwing)

	if got := p.Read(DeviceState{ModeOptions: []string{"Autoclean_Off", "NanoMode"}}); got != true {
		t.Errorf("Read(options with NanoMode) = %v, want true", got)
	}
	if got := p.Read(DeviceState{ModeOptions: []string{"Autoclean_Off"}}); got != false {
		t.Errorf("Read(options without NanoMode) = %v, want false", got)
	}

	path, payload, err := WriteProjection(PropSwing, false)
	if err != nil {
		t.Fatalf("WriteProjection() error = %v", err)
	}
	if path != "/mode" {
		t.Errorf("path = %q, want %q", path, "/mode")
	}
	options, _ := payload["options"].([]string)
	if len(options) != 1 || options[0] != "NanoMode_Off" {
		t.Errorf("payload[options] = %v, want [NanoMode_Off]", payload["options"])
	}
}

func TestProperty_AutoCleanProjections(t *testing.T) {
	p, _ := LookupProperty(PropAutoClean)

	if got := p.Read(DeviceState{ModeOptions: []string{"Autoclean_On"}}); got != true {
		t.Errorf("Read(Autoclean_On) = %v, want true", got)
	}

	_, payload, err := WriteProjection(PropAutoClean, true)
	if err != nil {
		t.Fatalf("WriteProjection() error = %v", err)
	}
	options, _ := payload["options"].([]string)
	if len(options) != 1 || options[0] != "Autoclean_On" {
		t.Errorf("payload[options] = %v, want [Autoclean_On]", payload["options"])
	}
}

func TestProperty_FanSpeed(t *testing.T) {
	p, _ := LookupProperty(PropFanSpeed)
	if got := p.Read(DeviceState{FanSpeed: 3}); got != 3 {
		t.Errorf("Read(fan=3) = %v, want 3", got)
	}

	_, payload, err := WriteProjection(PropFanSpeed, 2.0)
	if err != nil {
		t.Fatalf("WriteProjection() error = %v", err)
	}
	if payload["speedLevel"] != 2 {
		t.Errorf("payload[speedLevel] = %v, want 2", payload["speedLevel"])
	}

	if _, _, err := WriteProjection(PropFanSpeed, 9.0); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("WriteProjection(9) error = %v, want ErrInvalidValue", err)
	}
}

func TestWriteProjection_UnknownProperty(t *testing.T) {
	_, _, err := WriteProjection(PropertyID("humidity"), 40.0)
	if !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("WriteProjection() error = %v, want ErrUnknownProperty", err)
	}
}

func TestWriteProjection_ReadOnly(t *testing.T) {
	_, _, err := WriteProjection(PropCurrentTemperature, 20.0)
	if !errors.Is(err, ErrReadOnly) {
		t.Errorf("WriteProjection() error = %v, want ErrReadOnly", err)
	}

	_, _, err = WriteProjection(PropOperatingState, StateCooling)
	if !errors.Is(err, ErrReadOnly) {
		t.Errorf("WriteProjection() error = %v, want ErrReadOnly", err)
	}
}

func TestProjectAll(t *testing.T) {
	state := DeviceState{
		Power:              "On",
		CurrentTemperature: 23.5,
		TargetTemperature:  25,
		Modes:              []string{"Cool"},
		ModeOptions:        []string{"NanoMode", "Autoclean_Off"},
		FanSpeed:           2,
	}

	values := ProjectAll(state)

	if values["power"] != true {
		t.Errorf("power = %v, want true", values["power"])
	}
	if values["current_temperature"] != 23.5 {
		t.Errorf("current_temperature = %v, want 23.5", values["current_temperature"])
	}
	if values["target_temperature"] != 25.0 {
		t.Errorf("target_temperature = %v, want 25", values["target_temperature"])
	}
	if values["mode"] != "Cool" {
		t.Errorf("mode = %v, want Cool", values["mode"])
	}
	if values["operating_state"] != StateCooling {
		t.Errorf("operating_state = %v, want %s", values["operating_state"], StateCooling)
	}
	if values["swing"] != true {
		t.Errorf("swing = %v, want true", values["swing"])
	}
	if values["auto_clean"] != false {
		t.Errorf("auto_clean = %v, want false", values["auto_clean"])
	}
	if values["fan_speed"] != 2 {
		t.Errorf("fan_speed = %v, want 2", values["fan_speed"])
	}
}
