package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-aircon/internal/infrastructure/mqtt"
)

// HealthReporter manages periodic health status reporting.
// It publishes health messages to MQTT at regular intervals.
type HealthReporter struct {
	bridgeID  string
	version   string
	startTime time.Time
	interval  time.Duration

	// staleAfter is how old the last successful device fetch may be before
	// the appliance is considered unreachable.
	staleAfter time.Duration

	publisher HealthPublisher
	device    DeviceMonitor
	stats     func() Statistics

	// Shutdown coordination (stopOnce prevents double-close panics)
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	// Logger (optional)
	logger   Logger
	loggerMu sync.RWMutex
}

// HealthPublisher is the interface for publishing health messages.
// This is typically implemented by an MQTT client.
type HealthPublisher interface {
	// Publish sends a message to a topic with the specified QoS and retention.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// IsConnected returns true if the publisher is connected.
	IsConnected() bool
}

// DeviceMonitor reports the last successful contact with the appliance.
// This is satisfied by the state cache.
type DeviceMonitor interface {
	// LastRefreshed returns the completion time of the most recent
	// successful fetch. ok is false when no fetch has succeeded yet.
	LastRefreshed() (t time.Time, ok bool)
}

// HealthReporterConfig holds configuration for the health reporter.
type HealthReporterConfig struct {
	// BridgeID is the bridge identifier for health messages.
	BridgeID string

	// Version is the bridge software version.
	Version string

	// Interval is how often to publish health status.
	// Default: 30 seconds.
	Interval time.Duration

	// StaleAfter is how old the last device contact may be before the
	// status degrades to unreachable. Default: 3 * Interval.
	StaleAfter time.Duration

	// Publisher is the MQTT client for publishing messages.
	Publisher HealthPublisher

	// Device reports appliance contact times. Optional.
	Device DeviceMonitor

	// Stats supplies operational counters for the health message. Optional.
	Stats func() Statistics
}

// NewHealthReporter creates a new health reporter.
//
// Parameters:
//   - cfg: Configuration for the health reporter
//
// Returns:
//   - *HealthReporter: Ready to start (call Start to begin reporting)
func NewHealthReporter(cfg HealthReporterConfig) *HealthReporter {
	interval := cfg.Interval
	if interval == 0 {
		interval = 30 * time.Second
	}
	staleAfter := cfg.StaleAfter
	if staleAfter == 0 {
		staleAfter = 3 * interval
	}

	return &HealthReporter{
		bridgeID:   cfg.BridgeID,
		version:    cfg.Version,
		startTime:  time.Now(),
		interval:   interval,
		staleAfter: staleAfter,
		publisher:  cfg.Publisher,
		device:     cfg.Device,
		stats:      cfg.Stats,
		done:       make(chan struct{}),
	}
}

// Start begins periodic health reporting.
// Must be called after creation. Call Stop to shut down.
//
// Parameters:
//   - ctx: Context for cancellation (will stop reporting when cancelled)
func (h *HealthReporter) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.reportLoop(ctx)
}

// Stop gracefully stops health reporting.
// Publishes a final "stopping" status before returning.
// Safe to call multiple times (uses sync.Once).
func (h *HealthReporter) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		// Publish final stopping status (best-effort, ignore errors)
		//nolint:errcheck // Best-effort during shutdown, nothing we can do if it fails
		h.publishStatus(HealthStopping, "")
	})
}

// SetLogger sets the logger for this reporter.
func (h *HealthReporter) SetLogger(logger Logger) {
	h.loggerMu.Lock()
	h.logger = logger
	h.loggerMu.Unlock()
}

// PublishStarting publishes a "starting" status.
// Called during bridge initialization.
func (h *HealthReporter) PublishStarting() error {
	return h.publishStatus(HealthStarting, "bridge starting")
}

// PublishNow publishes the current health status immediately.
// Useful for forcing an update after a significant event.
func (h *HealthReporter) PublishNow() error {
	status, reason := h.determineStatus()
	return h.publishStatus(status, reason)
}

// reportLoop runs the periodic health reporting.
func (h *HealthReporter) reportLoop(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	// Publish initial status
	if err := h.PublishNow(); err != nil {
		h.logError("failed to publish initial health", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			if err := h.PublishNow(); err != nil {
				h.logError("failed to publish health", err)
			}
		}
	}
}

// determineStatus evaluates the current bridge status.
func (h *HealthReporter) determineStatus() (HealthStatus, string) {
	// Check MQTT connection
	if h.publisher == nil || !h.publisher.IsConnected() {
		return HealthDegraded, "MQTT disconnected"
	}

	// Check appliance contact
	if h.device != nil {
		last, ok := h.device.LastRefreshed()
		if !ok {
			return HealthDegraded, "no successful device fetch yet"
		}
		if age := time.Since(last); age > h.staleAfter {
			return HealthDegraded, fmt.Sprintf("no device contact for %s", age.Round(time.Second))
		}
	}

	// All good
	return HealthHealthy, ""
}

// publishStatus publishes a health status message.
func (h *HealthReporter) publishStatus(status HealthStatus, reason string) error {
	if h.publisher == nil {
		return nil // No publisher configured
	}

	var stats Statistics
	if h.stats != nil {
		stats = h.stats()
	}

	var lastContact *time.Time
	if h.device != nil {
		if last, ok := h.device.LastRefreshed(); ok {
			lastContact = &last
		}
	}

	msg := NewHealthMessage(h.bridgeID, h.version, status, stats, lastContact, h.startTime)
	if reason != "" {
		msg.Reason = reason
	}

	// A stale contact time means the appliance is not answering, even
	// though we have a timestamp for it.
	if msg.Device != nil && lastContact != nil && time.Since(*lastContact) > h.staleAfter {
		msg.Device.Status = "unreachable"
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// Publish (QoS 1, retained)
	return h.publisher.Publish(mqtt.Topics{}.BridgeHealth(), payload, 1, true)
}

// logError logs an error if logger is set.
func (h *HealthReporter) logError(msg string, err error) {
	h.loggerMu.RLock()
	logger := h.logger
	h.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
