// Package adapter provides the database adapter contract for leapcheck.
//
// Concrete adapter implementations live in pkg/adapters/ subdirectories and
// register themselves with the factory registry in their init() functions.
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// Config is an alias for core.AdapterConfig.
type Config = core.AdapterConfig

// Adapter defines the interface that all warehouse adapters must implement.
type Adapter interface {
	// Connect establishes a connection pool to the warehouse.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection pool and releases resources.
	Close() error

	// Handle returns a scoped single connection from the pool. The caller
	// owns the handle and must close it on every exit path.
	Handle(ctx context.Context) (*sql.Conn, error)
}
