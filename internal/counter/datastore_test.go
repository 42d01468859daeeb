package counter

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/datastore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckz/view-counter/internal/config"
)

// newDatastoreCounter needs the Datastore emulator, e.g.
// gcloud beta emulators datastore start --no-store-on-disk
func newDatastoreCounter(t *testing.T) *DatastoreCounter {
	t.Helper()
	if os.Getenv("DATASTORE_EMULATOR_HOST") == "" {
		t.Skip("DATASTORE_EMULATOR_HOST is not set")
	}

	pjID := os.Getenv("DATASTORE_PROJECT_ID")
	if pjID == "" {
		pjID = "view-counter-test"
	}

	c, err := NewDatastoreCounter(context.Background(), config.Config{
		TableName: "views-" + uuid.New().String(),
		ProjectID: pjID,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		c.client.Delete(context.Background(), c.key)
		c.Close()
	})
	return c
}

func TestDatastoreCounter_Sequential(t *testing.T) {
	assertSequential(t, newDatastoreCounter(t), 5)
}

func TestDatastoreCounter_Concurrent(t *testing.T) {
	assertConcurrent(t, newDatastoreCounter(t), 5)
}

func TestDatastoreCounter_StoredEntity(t *testing.T) {
	c := newDatastoreCounter(t)
	ctx := context.Background()

	_, err := c.Up(ctx)
	require.NoError(t, err)
	_, err = c.Up(ctx)
	require.NoError(t, err)

	var rec ViewCount
	require.NoError(t, c.client.Get(ctx, c.key, &rec))
	assert.EqualValues(t, 2, rec.Count)
	assert.Equal(t, ID, c.key.Name)
}

func TestDatastoreCounter_GetMissing(t *testing.T) {
	c := newDatastoreCounter(t)

	err := c.client.Get(context.Background(), c.key, &ViewCount{})
	require.ErrorIs(t, err, datastore.ErrNoSuchEntity)

	n, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
