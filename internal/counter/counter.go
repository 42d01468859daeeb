// Package counter persists the view count behind an atomic
// increment-with-default primitive provided by the backing store.
package counter

import (
	"context"
	"fmt"

	"github.com/tckz/view-counter/internal/config"
)

// ID is the key of the single counter record.
const ID = "views"

type Counter interface {
	// Up increments the counter, treating a missing record as 0, and
	// returns the new value.
	Up(ctx context.Context) (int64, error)
	// Get returns the current value without modifying it. A missing
	// record reads as 0.
	Get(ctx context.Context) (int64, error)
	Close() error
}

// StoreError reports a failed store operation. Its message is the
// message of the underlying error, unchanged.
type StoreError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Backend: backend, Op: op, Err: err}
}

// New builds the Counter for cfg.Backend. The returned Counter is meant
// to live for the whole process.
func New(ctx context.Context, cfg config.Config) (Counter, error) {
	switch cfg.Backend {
	case config.BackendDynamoDB:
		return NewDynamoDBCounter(ctx, cfg)
	case config.BackendDatastore:
		return NewDatastoreCounter(ctx, cfg)
	case config.BackendRedis:
		return NewRedisCounter(cfg), nil
	case config.BackendMemory:
		return NewMemoryCounter(cfg.TableName), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

func recordKey(table string) string {
	return table + ":" + ID
}
