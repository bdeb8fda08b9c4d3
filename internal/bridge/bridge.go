package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-aircon/internal/aircon"
	"github.com/nerrad567/gray-logic-aircon/internal/audit"
	"github.com/nerrad567/gray-logic-aircon/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-aircon/internal/infrastructure/mqtt"
)

// Bridge operation constants.
const (
	// minTopicParts is the minimum number of parts in a valid MQTT topic.
	minTopicParts = 4

	// commandTimeout bounds a single device write, including the
	// post-write cache re-warm.
	commandTimeout = 10 * time.Second

	// auditTimeout bounds a single audit insert.
	auditTimeout = 2 * time.Second
)

// Bridge connects the air conditioner to the Gray Logic MQTT bus.
// It handles:
//   - Receiving commands from Core via MQTT and applying them to the device
//   - Publishing retained state snapshots on a poll interval
//   - Health reporting and graceful shutdown
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	cfg    config.BridgeConfig
	qos    byte
	topics mqtt.Topics

	client     MQTTClient
	cache      *aircon.StateCache
	dispatcher *aircon.Dispatcher
	health     *HealthReporter
	audit      audit.Repository // Optional command audit trail
	telemetry  Telemetry        // Optional time-series sink

	// Operational counters, reported through the health message.
	commandsProcessed atomic.Uint64
	commandsFailed    atomic.Uint64
	statePublishes    atomic.Uint64

	// Shutdown coordination
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
	ctx       context.Context    // Bridge-level context, cancelled on Stop()
	ctxCancel context.CancelFunc // Cancel function for ctx

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// Telemetry receives climate samples and command outcomes for time-series
// storage. Implementations must not block. This is satisfied by the
// InfluxDB client; it is optional and may be nil.
type Telemetry interface {
	// WriteClimateSample records one polled climate reading.
	WriteClimateSample(deviceID string, currentC, targetC float64, powerOn bool, fanSpeed int)

	// WriteCommandMetric records one command outcome.
	WriteCommandMetric(deviceID, property string, success bool, duration time.Duration)
}

// Logger is the minimal logging interface used by this package.
// This is satisfied by the infrastructure logging package.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Options holds the dependencies for constructing a Bridge.
type Options struct {
	// Config is the bridge section of the application configuration.
	Config config.BridgeConfig

	// QoS is the quality of service level for published messages.
	QoS byte

	// Version is the bridge software version, reported in health messages.
	Version string

	// MQTT is the bus connection. Required.
	MQTT MQTTClient

	// Cache serves device state reads. Required.
	Cache *aircon.StateCache

	// Dispatcher serialises device writes. Required.
	Dispatcher *aircon.Dispatcher

	// Audit records command outcomes. Optional.
	Audit audit.Repository

	// Telemetry records climate samples and command metrics. Optional.
	Telemetry Telemetry
}

// NewBridge creates a bridge from its dependencies.
//
// Parameters:
//   - opts: Dependencies and configuration (MQTT, Cache and Dispatcher are required)
//
// Returns:
//   - *Bridge: Ready to start (call Start to begin operation)
//   - error: If a required dependency is missing
func NewBridge(opts Options) (*Bridge, error) {
	if opts.MQTT == nil {
		return nil, fmt.Errorf("%w: MQTT client is required", ErrInvalidOptions)
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("%w: state cache is required", ErrInvalidOptions)
	}
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("%w: dispatcher is required", ErrInvalidOptions)
	}

	ctx, cancel := context.WithCancel(context.Background())

	b := &Bridge{
		cfg:        opts.Config,
		qos:        opts.QoS,
		client:     opts.MQTT,
		cache:      opts.Cache,
		dispatcher: opts.Dispatcher,
		audit:      opts.Audit,
		telemetry:  opts.Telemetry,
		done:       make(chan struct{}),
		ctx:        ctx,
		ctxCancel:  cancel,
	}

	b.health = NewHealthReporter(HealthReporterConfig{
		BridgeID:   opts.Config.ID,
		Version:    opts.Version,
		Interval:   opts.Config.HealthInterval,
		StaleAfter: 3 * opts.Config.PollInterval,
		Publisher:  opts.MQTT,
		Device:     opts.Cache,
		Stats:      b.statistics,
	})

	return b, nil
}

// Start begins bridge operation: subscribes to command topics, starts the
// state poll loop and health reporting.
//
// Parameters:
//   - ctx: Context for cancellation (stops the poll and health loops)
//
// Returns:
//   - error: If the command subscription fails
func (b *Bridge) Start(ctx context.Context) error {
	// Publish starting status
	if err := b.health.PublishStarting(); err != nil {
		b.logError("failed to publish starting status", err)
	}

	// Subscribe to command topics
	commandTopic := b.topics.AllCommands()
	if err := b.client.Subscribe(commandTopic, b.qos, b.handleCommandMessage); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logInfo("subscribed to commands", "topic", commandTopic)

	// Start state polling (publishes an initial snapshot immediately)
	b.wg.Add(1)
	go b.pollLoop(ctx)

	// Start health reporting
	b.health.Start(ctx)

	b.logInfo("bridge started",
		"bridge_id", b.cfg.ID,
		"device_id", b.cfg.DeviceID,
		"poll_interval", b.cfg.PollInterval)

	return nil
}

// Stop gracefully shuts down the bridge.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)

		// Cancel bridge context to abort in-flight commands
		b.ctxCancel()

		// Stop health reporting (publishes "stopping" status)
		b.health.Stop()

		// Wait for pending operations
		b.wg.Wait()

		b.logInfo("bridge stopped")
	})
}

// pollLoop publishes retained state snapshots on the poll interval.
func (b *Bridge) pollLoop(ctx context.Context) {
	defer b.wg.Done()

	interval := b.cfg.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Publish initial snapshot
	b.publishState()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case <-ticker.C:
			b.publishState()
		}
	}
}

// publishState fetches the current device state through the cache and
// publishes it as a retained snapshot. Fetch failures are logged and
// skipped; the next poll retries and the health reporter degrades if the
// appliance stays silent.
func (b *Bridge) publishState() {
	ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
	defer cancel()

	state, err := b.cache.Get(ctx)
	if err != nil {
		b.logError("state fetch failed", err)
		return
	}

	props := aircon.ProjectAll(state)
	msg := NewStateMessage(b.cfg.DeviceID, props)

	payload, err := json.Marshal(msg)
	if err != nil {
		b.logError("failed to marshal state", err)
		return
	}

	topic := b.topics.BridgeState(b.cfg.DeviceID)
	if err := b.client.Publish(topic, payload, b.qos, true); err != nil {
		b.logError("failed to publish state", err)
		return
	}
	b.statePublishes.Add(1)

	if b.telemetry != nil {
		powerOn, _ := props[string(aircon.PropPower)].(bool)
		b.telemetry.WriteClimateSample(b.cfg.DeviceID,
			state.CurrentTemperature, state.TargetTemperature,
			powerOn, state.FanSpeed)
	}
}

// handleCommandMessage processes a command received from the bus.
func (b *Bridge) handleCommandMessage(topic string, payload []byte) error {
	parts := strings.Split(topic, "/")
	if len(parts) < minTopicParts {
		return fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}

	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}

	b.logInfo("received command",
		"command_id", cmd.ID,
		"device_id", cmd.DeviceID,
		"property", cmd.Property)

	if cmd.ID == "" {
		b.publishAckError(cmd, ErrCodeInvalidCommand, "missing command id")
		return nil
	}
	if cmd.DeviceID != b.cfg.DeviceID {
		b.publishAckError(cmd, ErrCodeNotConfigured,
			fmt.Sprintf("device %s not managed by this bridge", cmd.DeviceID))
		return nil
	}

	b.executeCommand(cmd)
	return nil
}

// executeCommand projects the command into a device write, applies it, and
// publishes the acknowledgment plus a fresh retained state snapshot.
func (b *Bridge) executeCommand(cmd CommandMessage) {
	start := time.Now()

	path, payload, err := aircon.WriteProjection(aircon.PropertyID(cmd.Property), cmd.Value)
	if err != nil {
		b.commandsFailed.Add(1)
		b.publishAckError(cmd, ackCodeForError(err), err.Error())
		b.recordAudit(cmd, string(AckFailed), err.Error(), time.Since(start))
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
	defer cancel()

	err = b.dispatcher.Send(ctx, path, payload)
	duration := time.Since(start)

	if b.telemetry != nil {
		b.telemetry.WriteCommandMetric(b.cfg.DeviceID, cmd.Property, err == nil, duration)
	}

	if err != nil {
		b.commandsFailed.Add(1)
		b.publishAckError(cmd, ackCodeForError(err), err.Error())
		b.recordAudit(cmd, string(AckFailed), err.Error(), duration)
		return
	}

	b.commandsProcessed.Add(1)
	b.publishAck(cmd, AckAccepted)
	b.recordAudit(cmd, string(AckAccepted), "", duration)

	// The dispatcher re-warmed the cache after the write, so this snapshot
	// reflects the just-applied command without another device round-trip.
	b.publishState()
}

// publishAck publishes a command acknowledgment.
func (b *Bridge) publishAck(cmd CommandMessage, status AckStatus) {
	b.sendAck(NewAckMessage(cmd, status))
}

// publishAckError publishes a failed command acknowledgment.
func (b *Bridge) publishAckError(cmd CommandMessage, code, message string) {
	b.sendAck(NewAckError(cmd, code, message))

	b.logError("command failed",
		fmt.Errorf("code=%s message=%s", code, message))
}

func (b *Bridge) sendAck(ack AckMessage) {
	payload, err := json.Marshal(ack)
	if err != nil {
		b.logError("failed to marshal ack", err)
		return
	}

	topic := b.topics.BridgeAck(b.cfg.DeviceID)
	if err := b.client.Publish(topic, payload, b.qos, false); err != nil {
		b.logError("failed to publish ack", err)
	}
}

// recordAudit writes the command outcome to the audit trail, if configured.
func (b *Bridge) recordAudit(cmd CommandMessage, status, errMsg string, duration time.Duration) {
	if b.audit == nil {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, auditTimeout)
	defer cancel()

	rec := &audit.CommandRecord{
		CommandID: cmd.ID,
		DeviceID:  cmd.DeviceID,
		Property:  cmd.Property,
		Value:     cmd.Value,
		Status:    status,
		Error:     errMsg,
		Source:    cmd.Source,
		Duration:  duration,
	}
	if err := b.audit.Create(ctx, rec); err != nil {
		b.logError("failed to record command audit", err)
	}
}

// statistics snapshots the operational counters for health reporting.
func (b *Bridge) statistics() Statistics {
	return Statistics{
		CommandsProcessed: b.commandsProcessed.Load(),
		CommandsFailed:    b.commandsFailed.Load(),
		StatePublishes:    b.statePublishes.Load(),
	}
}

// ackCodeForError maps a device layer error to a bus error code.
func ackCodeForError(err error) string {
	switch {
	case errors.Is(err, aircon.ErrUnknownProperty):
		return ErrCodeUnknownProperty
	case errors.Is(err, aircon.ErrReadOnly):
		return ErrCodeReadOnlyProperty
	case errors.Is(err, aircon.ErrInvalidValue):
		return ErrCodeInvalidValue
	case errors.Is(err, aircon.ErrTimeout):
		return ErrCodeTimeout
	case errors.Is(err, aircon.ErrAuth):
		return ErrCodeAuthFailed
	case errors.Is(err, aircon.ErrNetwork):
		return ErrCodeDeviceUnreachable
	default:
		return ErrCodeBridgeError
	}
}

// SetLogger sets the logger for the bridge and its health reporter.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()

	if b.health != nil {
		b.health.SetLogger(logger)
	}
}

// logInfo logs an info message if logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (b *Bridge) logError(msg string, err error) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
