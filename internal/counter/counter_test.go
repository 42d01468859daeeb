package counter

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckz/view-counter/internal/config"
)

func newRedisCounter(t *testing.T) (*RedisCounter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cl := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	c := NewRedisCounterWithClient("test", cl)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func assertSequential(t *testing.T, c Counter, n int) {
	t.Helper()
	ctx := context.Background()

	v, err := c.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)

	for i := 1; i <= n; i++ {
		v, err := c.Up(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, i, v)
	}

	v, err = c.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, n, v)
}

func assertConcurrent(t *testing.T, c Counter, n int) {
	t.Helper()
	ctx := context.Background()

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Up(ctx)
			assert.NoError(t, err)
			mu.Lock()
			got = append(got, int(v))
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Ints(got)
	want := make([]int, n)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, got)
}

func TestMemoryCounter_Sequential(t *testing.T) {
	assertSequential(t, NewMemoryCounter("test"), 10)
}

func TestMemoryCounter_Concurrent(t *testing.T) {
	assertConcurrent(t, NewMemoryCounter("test"), 200)
}

func TestMemoryCounter_TablesAreIndependent(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryCounter("a")
	b := NewMemoryCounter("b")

	_, err := a.Up(ctx)
	require.NoError(t, err)

	v, err := b.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)
}

func TestRedisCounter_Sequential(t *testing.T) {
	c, mr := newRedisCounter(t)
	assertSequential(t, c, 5)
	assert.Equal(t, "5", mr.HGet("test:views", "count"))
}

func TestRedisCounter_Concurrent(t *testing.T) {
	c, _ := newRedisCounter(t)
	assertConcurrent(t, c, 100)
}

func TestRedisCounter_StoreError(t *testing.T) {
	c, mr := newRedisCounter(t)
	_, err := c.Up(context.Background())
	require.NoError(t, err)

	mr.SetError("ERR simulated failure")
	_, err = c.Up(context.Background())
	require.Error(t, err)

	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "redis", se.Backend)
	assert.Equal(t, "Up", se.Op)
	assert.Equal(t, "ERR simulated failure", err.Error())
}

func TestStoreError_MessageVerbatim(t *testing.T) {
	cause := errors.New("ProvisionedThroughputExceeded")
	err := storeError("dynamodb", "Up", cause)

	assert.Equal(t, "ProvisionedThroughputExceeded", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, storeError("dynamodb", "Up", nil))
}

func TestNew(t *testing.T) {
	c, err := New(context.Background(), config.Config{TableName: "t", Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCounter{}, c)

	_, err = New(context.Background(), config.Config{TableName: "t", Backend: "nope"})
	assert.EqualError(t, err, "unknown backend: nope")
}
