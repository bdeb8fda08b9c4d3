package bridge

import (
	"testing"
	"time"
)

func TestNewAckMessage(t *testing.T) {
	cmd := CommandMessage{
		ID:       "cmd-42",
		DeviceID: "ac-livingroom",
		Property: "power",
		Value:    true,
	}

	ack := NewAckMessage(cmd, AckAccepted)

	if ack.CommandID != "cmd-42" {
		t.Errorf("CommandID = %q, want %q", ack.CommandID, "cmd-42")
	}
	if ack.DeviceID != "ac-livingroom" {
		t.Errorf("DeviceID = %q, want %q", ack.DeviceID, "ac-livingroom")
	}
	if ack.Protocol != Protocol {
		t.Errorf("Protocol = %q, want %q", ack.Protocol, Protocol)
	}
	if ack.Property != "power" {
		t.Errorf("Property = %q, want %q", ack.Property, "power")
	}
	if ack.Error != nil {
		t.Errorf("Error = %+v, want nil", ack.Error)
	}
	if ack.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
}

func TestNewAckError(t *testing.T) {
	cmd := CommandMessage{ID: "cmd-43", DeviceID: "ac-livingroom", Property: "mode"}

	tests := []struct {
		name       string
		code       string
		wantStatus AckStatus
	}{
		{name: "failure code", code: ErrCodeInvalidValue, wantStatus: AckFailed},
		{name: "timeout code", code: ErrCodeTimeout, wantStatus: AckTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := NewAckError(cmd, tt.code, "boom")
			if ack.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", ack.Status, tt.wantStatus)
			}
			if ack.Error == nil {
				t.Fatal("Error is nil")
			}
			if ack.Error.Code != tt.code {
				t.Errorf("Error.Code = %q, want %q", ack.Error.Code, tt.code)
			}
			if ack.Error.Message != "boom" {
				t.Errorf("Error.Message = %q, want %q", ack.Error.Message, "boom")
			}
		})
	}
}

func TestNewStateMessage(t *testing.T) {
	state := map[string]any{"power": true, "target_temperature": 21.0}
	msg := NewStateMessage("ac-livingroom", state)

	if msg.DeviceID != "ac-livingroom" {
		t.Errorf("DeviceID = %q, want %q", msg.DeviceID, "ac-livingroom")
	}
	if msg.Protocol != Protocol {
		t.Errorf("Protocol = %q, want %q", msg.Protocol, Protocol)
	}
	if got := msg.State["power"]; got != true {
		t.Errorf("State[power] = %v, want true", got)
	}
}

func TestNewHealthMessage(t *testing.T) {
	start := time.Now().Add(-90 * time.Second)
	stats := Statistics{CommandsProcessed: 3}

	t.Run("with contact", func(t *testing.T) {
		last := time.Now().Add(-5 * time.Second)
		msg := NewHealthMessage("aircon-bridge-01", "1.0.0", HealthHealthy, stats, &last, start)

		if msg.UptimeSeconds < 89 {
			t.Errorf("UptimeSeconds = %d, want >= 89", msg.UptimeSeconds)
		}
		if msg.Device == nil || msg.Device.Status != "reachable" {
			t.Errorf("Device = %+v, want reachable", msg.Device)
		}
		if msg.Statistics == nil || msg.Statistics.CommandsProcessed != 3 {
			t.Errorf("Statistics = %+v, want commands_processed=3", msg.Statistics)
		}
	})

	t.Run("without contact", func(t *testing.T) {
		msg := NewHealthMessage("aircon-bridge-01", "1.0.0", HealthDegraded, stats, nil, start)

		if msg.Device == nil || msg.Device.Status != "unreachable" {
			t.Errorf("Device = %+v, want unreachable", msg.Device)
		}
		if msg.Device.LastContact != nil {
			t.Errorf("LastContact = %v, want nil", msg.Device.LastContact)
		}
	})
}

func TestNewLWTMessage(t *testing.T) {
	msg := NewLWTMessage("aircon-bridge-01")

	if msg.Status != HealthOffline {
		t.Errorf("Status = %q, want %q", msg.Status, HealthOffline)
	}
	if msg.Reason != "unexpected_disconnect" {
		t.Errorf("Reason = %q, want %q", msg.Reason, "unexpected_disconnect")
	}
}
