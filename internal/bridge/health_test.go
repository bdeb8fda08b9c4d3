package bridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-aircon/internal/infrastructure/mqtt"
)

// fakeMonitor implements DeviceMonitor with a fixed answer.
type fakeMonitor struct {
	last time.Time
	ok   bool
}

func (f fakeMonitor) LastRefreshed() (time.Time, bool) {
	return f.last, f.ok
}

func newTestReporter(publisher HealthPublisher, device DeviceMonitor) *HealthReporter {
	return NewHealthReporter(HealthReporterConfig{
		BridgeID:   "aircon-bridge-01",
		Version:    "test",
		Interval:   time.Second,
		StaleAfter: 30 * time.Second,
		Publisher:  publisher,
		Device:     device,
	})
}

func TestDetermineStatus(t *testing.T) {
	tests := []struct {
		name       string
		connected  bool
		device     DeviceMonitor
		wantStatus HealthStatus
	}{
		{
			name:       "mqtt disconnected",
			connected:  false,
			device:     fakeMonitor{last: time.Now(), ok: true},
			wantStatus: HealthDegraded,
		},
		{
			name:       "no device fetch yet",
			connected:  true,
			device:     fakeMonitor{},
			wantStatus: HealthDegraded,
		},
		{
			name:       "device contact stale",
			connected:  true,
			device:     fakeMonitor{last: time.Now().Add(-time.Minute), ok: true},
			wantStatus: HealthDegraded,
		},
		{
			name:       "healthy",
			connected:  true,
			device:     fakeMonitor{last: time.Now(), ok: true},
			wantStatus: HealthHealthy,
		},
		{
			name:       "no monitor configured",
			connected:  true,
			device:     nil,
			wantStatus: HealthHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewMockMQTTClient()
			client.connected = tt.connected

			h := newTestReporter(client, tt.device)
			status, reason := h.determineStatus()
			if status != tt.wantStatus {
				t.Errorf("determineStatus() = %q (%q), want %q", status, reason, tt.wantStatus)
			}
			if status == HealthDegraded && reason == "" {
				t.Error("degraded status has no reason")
			}
		})
	}
}

func TestPublishStarting(t *testing.T) {
	client := NewMockMQTTClient()
	h := newTestReporter(client, nil)

	if err := h.PublishStarting(); err != nil {
		t.Fatalf("PublishStarting() error = %v", err)
	}

	published := client.publishedTo(mqtt.Topics{}.BridgeHealth())
	if len(published) != 1 {
		t.Fatalf("health publishes = %d, want 1", len(published))
	}
	if !published[0].Retained {
		t.Error("health message not retained")
	}

	var msg HealthMessage
	if err := json.Unmarshal(published[0].Payload, &msg); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if msg.Status != HealthStarting {
		t.Errorf("status = %q, want %q", msg.Status, HealthStarting)
	}
	if msg.Bridge != "aircon-bridge-01" {
		t.Errorf("bridge = %q, want %q", msg.Bridge, "aircon-bridge-01")
	}
}

func TestPublishNow_IncludesStatsAndContact(t *testing.T) {
	client := NewMockMQTTClient()
	last := time.Now().Add(-2 * time.Second).UTC()

	h := NewHealthReporter(HealthReporterConfig{
		BridgeID:   "aircon-bridge-01",
		Interval:   time.Second,
		StaleAfter: 30 * time.Second,
		Publisher:  client,
		Device:     fakeMonitor{last: last, ok: true},
		Stats: func() Statistics {
			return Statistics{CommandsProcessed: 7, CommandsFailed: 2, StatePublishes: 40}
		},
	})

	if err := h.PublishNow(); err != nil {
		t.Fatalf("PublishNow() error = %v", err)
	}

	published := client.publishedTo(mqtt.Topics{}.BridgeHealth())
	if len(published) != 1 {
		t.Fatalf("health publishes = %d, want 1", len(published))
	}

	var msg HealthMessage
	if err := json.Unmarshal(published[0].Payload, &msg); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if msg.Status != HealthHealthy {
		t.Errorf("status = %q, want %q", msg.Status, HealthHealthy)
	}
	if msg.Statistics == nil || msg.Statistics.CommandsProcessed != 7 {
		t.Errorf("statistics = %+v, want commands_processed=7", msg.Statistics)
	}
	if msg.Device == nil || msg.Device.Status != "reachable" {
		t.Errorf("device = %+v, want reachable", msg.Device)
	}
	if msg.Device.LastContact == nil || !msg.Device.LastContact.Equal(last) {
		t.Errorf("last_contact = %v, want %v", msg.Device.LastContact, last)
	}
}

func TestStopPublishesStopping(t *testing.T) {
	client := NewMockMQTTClient()
	h := newTestReporter(client, fakeMonitor{last: time.Now(), ok: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.Start(ctx)
	h.Stop()
	h.Stop() // idempotent

	published := client.publishedTo(mqtt.Topics{}.BridgeHealth())
	if len(published) == 0 {
		t.Fatal("no health messages published")
	}

	var last HealthMessage
	if err := json.Unmarshal(published[len(published)-1].Payload, &last); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if last.Status != HealthStopping {
		t.Errorf("final status = %q, want %q", last.Status, HealthStopping)
	}
}

func TestStaleContactMarksDeviceUnreachable(t *testing.T) {
	client := NewMockMQTTClient()
	h := newTestReporter(client, fakeMonitor{last: time.Now().Add(-time.Minute), ok: true})

	if err := h.PublishNow(); err != nil {
		t.Fatalf("PublishNow() error = %v", err)
	}

	published := client.publishedTo(mqtt.Topics{}.BridgeHealth())
	var msg HealthMessage
	if err := json.Unmarshal(published[0].Payload, &msg); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if msg.Status != HealthDegraded {
		t.Errorf("status = %q, want %q", msg.Status, HealthDegraded)
	}
	if msg.Device == nil || msg.Device.Status != "unreachable" {
		t.Errorf("device = %+v, want unreachable", msg.Device)
	}
}
