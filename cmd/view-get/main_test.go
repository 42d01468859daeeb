package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckz/view-counter/internal/counter"
)

type brokenCounter struct{}

func (brokenCounter) Up(ctx context.Context) (int64, error)  { return 0, errors.New("unavailable") }
func (brokenCounter) Get(ctx context.Context) (int64, error) { return 0, errors.New("unavailable") }
func (brokenCounter) Close() error                           { return nil }

func TestPrintCount(t *testing.T) {
	ctx := context.Background()
	c := counter.NewMemoryCounter("test")
	for i := 0; i < 1234; i++ {
		_, err := c.Up(ctx)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, printCount(ctx, c, &buf, false))
	assert.Equal(t, "1234\n", buf.String())

	buf.Reset()
	require.NoError(t, printCount(ctx, c, &buf, true))
	assert.Equal(t, "1,234\n", buf.String())
}

func TestPrintCount_StoreError(t *testing.T) {
	var buf bytes.Buffer
	err := printCount(context.Background(), brokenCounter{}, &buf, false)
	assert.EqualError(t, err, "unavailable")
	assert.Empty(t, buf.String())
}
