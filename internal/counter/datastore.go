package counter

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/datastore"
	"google.golang.org/api/option"

	"github.com/tckz/view-counter/internal/config"
)

var _ Counter = (*DatastoreCounter)(nil)

// Concurrent increments of the single entity collide often.
const datastoreMaxAttempts = 10

type ViewCount struct {
	Count int64 `datastore:"count"`
}

// DatastoreCounter stores the count in the entity kind=TableName,
// name="views".
type DatastoreCounter struct {
	key    *datastore.Key
	client *datastore.Client
}

func NewDatastoreCounter(ctx context.Context, cfg config.Config) (*DatastoreCounter, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	cl, err := datastore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("datastore.NewClient: %w", err)
	}

	return &DatastoreCounter{
		key:    datastore.NameKey(cfg.TableName, ID, nil),
		client: cl,
	}, nil
}

// Up reads and writes in one transaction. The func passed to
// RunInTransaction may run more than once when transactions collide.
func (c *DatastoreCounter) Up(ctx context.Context) (int64, error) {
	var n int64
	_, err := c.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var rec ViewCount
		if err := tx.Get(c.key, &rec); err != nil && !errors.Is(err, datastore.ErrNoSuchEntity) {
			return err
		}
		rec.Count++
		if _, err := tx.Put(c.key, &rec); err != nil {
			return err
		}
		n = rec.Count
		return nil
	}, datastore.MaxAttempts(datastoreMaxAttempts))
	if err != nil {
		return 0, storeError("datastore", "Up", err)
	}
	return n, nil
}

func (c *DatastoreCounter) Get(ctx context.Context) (int64, error) {
	var rec ViewCount
	err := c.client.Get(ctx, c.key, &rec)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return 0, nil
	}
	if err != nil {
		return 0, storeError("datastore", "Get", err)
	}
	return rec.Count, nil
}

func (c *DatastoreCounter) Close() error {
	return c.client.Close()
}
