// Package database provides SQLite connectivity for the Gray Logic
// Aircon Bridge.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Forward-only schema migrations embedded in the binary
//   - Connection pooling and lifecycle management
//
// The bridge uses SQLite for a single concern: the command audit trail.
// Device state is never persisted here; the in-memory cache is the only
// state store, and the air conditioner remains the source of truth.
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Performance Characteristics:
//   - WAL mode allows concurrent reads during writes
//   - Busy timeout prevents lock contention errors
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration Strategy:
//
// Migrations are forward-only and additive. The bridge's schema is a
// single audit table, so rollback machinery is not carried: fixing a
// bad migration means shipping a new one.
package database
