// Package audit provides access to the command_audit table, recording
// every command the bridge dispatches to the air conditioner.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Pagination limits for List queries.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// CommandRecord is a single audit trail entry for a dispatched command.
type CommandRecord struct {
	ID        string        `json:"id"`
	CommandID string        `json:"command_id"`
	DeviceID  string        `json:"device_id"`
	Property  string        `json:"property"`
	Value     any           `json:"value,omitempty"`
	Status    string        `json:"status"` // accepted, failed
	Error     string        `json:"error,omitempty"`
	Source    string        `json:"source,omitempty"`
	Duration  time.Duration `json:"duration_ms"`
	CreatedAt time.Time     `json:"created_at"`
}

// Filter controls which audit records to return.
type Filter struct {
	DeviceID string // optional: filter by device
	Property string // optional: filter by property (power, target_temperature, ...)
	Status   string // optional: filter by outcome (accepted, failed)
	Limit    int    // default 50, max 200
	Offset   int    // pagination offset
}

// ListResult contains the paginated audit results.
type ListResult struct {
	Records []CommandRecord `json:"records"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// Repository defines the interface for command audit operations.
type Repository interface {
	Create(ctx context.Context, rec *CommandRecord) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores command audit records in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new command audit repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new audit record. The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, rec *CommandRecord) error {
	if rec.ID == "" {
		rec.ID = "aud-" + uuid.NewString()[:8]
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var valueJSON *string
	if rec.Value != nil {
		b, err := json.Marshal(rec.Value)
		if err != nil {
			return fmt.Errorf("marshalling audit value: %w", err)
		}
		s := string(b)
		valueJSON = &s
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO command_audit (id, command_id, device_id, property, value, status, error, source, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CommandID, rec.DeviceID, rec.Property,
		valueJSON, rec.Status, nullableString(rec.Error), rec.Source,
		rec.Duration.Milliseconds(),
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}

	return nil
}

// nullableString returns nil for empty strings, or the string otherwise.
// Used for nullable TEXT columns in SQLite.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns audit records matching the filter, ordered by most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Build WHERE clause dynamically.
	var conditions []string
	var args []any

	if filter.DeviceID != "" {
		conditions = append(conditions, "device_id = ?")
		args = append(args, filter.DeviceID)
	}
	if filter.Property != "" {
		conditions = append(conditions, "property = ?")
		args = append(args, filter.Property)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Get total count.
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM command_audit %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting audit records: %w", err)
	}

	// Get paginated results.
	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		"SELECT id, command_id, device_id, property, value, status, error, source, duration_ms, created_at FROM command_audit %s ORDER BY created_at DESC LIMIT ? OFFSET ?",
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit records: %w", err)
	}
	defer rows.Close()

	var records []CommandRecord
	for rows.Next() {
		var rec CommandRecord
		var valueJSON, errText sql.NullString
		var durationMs int64
		var createdAt string

		if err := rows.Scan(&rec.ID, &rec.CommandID, &rec.DeviceID, &rec.Property,
			&valueJSON, &rec.Status, &errText, &rec.Source, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}

		if errText.Valid {
			rec.Error = errText.String
		}
		if valueJSON.Valid && valueJSON.String != "" {
			var value any
			if json.Unmarshal([]byte(valueJSON.String), &value) == nil {
				rec.Value = value
			}
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing audit timestamp %q: %w", createdAt, err)
		}
		rec.CreatedAt = t

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit records: %w", err)
	}

	if records == nil {
		records = []CommandRecord{}
	}

	return &ListResult{
		Records: records,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
