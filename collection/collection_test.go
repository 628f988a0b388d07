package collection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hairizuan-noorazman/user-registry/logger"
	"github.com/hairizuan-noorazman/user-registry/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// failingBackend fails every call with err.
type failingBackend struct {
	err error
}

func (f failingBackend) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingBackend) Put(context.Context, string, []byte) error   { return f.err }
func (f failingBackend) Delete(context.Context, string) error        { return f.err }

func setup(t *testing.T) (*Collection[row], *storage.MemoryBackend, *logger.TestLogger) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	log := logger.NewTestLogger()
	return New[row](backend, "data", log), backend, log
}

func TestCollection_LoadAbsentIsEmpty(t *testing.T) {
	c, _, log := setup(t)

	got := c.Load(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, log.EntriesAt("warn"))
	assert.Empty(t, log.EntriesAt("error"))
}

func TestCollection_LoadMalformedIsEmpty(t *testing.T) {
	ctx := context.Background()
	c, backend, log := setup(t)

	for _, raw := range []string{`{"not":"a list"}`, `[{"id":`, `null`} {
		require.NoError(t, backend.Put(ctx, "data", []byte(raw)))
		got := c.Load(ctx)
		assert.NotNil(t, got, raw)
		assert.Empty(t, got, raw)
	}

	// null decodes cleanly; the other two are reported.
	assert.Len(t, log.EntriesAt("warn"), 2)
}

func TestCollection_LoadBackendFailureIsEmpty(t *testing.T) {
	log := logger.NewTestLogger()
	c := New[row](failingBackend{err: errors.New("disk on fire")}, "data", log)

	assert.Empty(t, c.Load(context.Background()))
	require.Len(t, log.EntriesAt("error"), 1)
	assert.Equal(t, "data", log.EntriesAt("error")[0].Fields["collection"])
}

func seed(t *testing.T, c *Collection[row], rows ...row) {
	t.Helper()
	require.NoError(t, c.Modify(context.Background(), func([]row) ([]row, error) {
		return rows, nil
	}))
}

func TestCollection_ModifyAndLoad(t *testing.T) {
	ctx := context.Background()
	c, backend, _ := setup(t)

	rows := []row{{ID: "a", Name: "Al"}, {ID: "b", Name: "Bo"}}
	seed(t, c, rows...)

	assert.Equal(t, rows, c.Load(ctx))

	raw, err := backend.Get(ctx, "data")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","name":"Al"},{"id":"b","name":"Bo"}]`, string(raw))
}

func TestCollection_ModifyNilStoresEmptyArray(t *testing.T) {
	ctx := context.Background()
	c, backend, _ := setup(t)

	seed(t, c)

	raw, err := backend.Get(ctx, "data")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestCollection_ModifyErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t)
	seed(t, c, row{ID: "a"})

	sentinel := errors.New("nope")
	err := c.Modify(ctx, func(rows []row) ([]row, error) {
		return nil, sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, []row{{ID: "a"}}, c.Load(ctx))
}

// flakyBackend wraps a memory backend and fails reads or writes on demand.
type flakyBackend struct {
	*storage.MemoryBackend
	getErr error
	putErr error
	puts   int
}

func (f *flakyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryBackend.Get(ctx, key)
}

func (f *flakyBackend) Put(ctx context.Context, key string, data []byte) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemoryBackend.Put(ctx, key, data)
}

func TestCollection_ModifyReadFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{MemoryBackend: storage.NewMemoryBackend()}
	log := logger.NewTestLogger()
	c := New[row](backend, "data", log)
	seed(t, c, row{ID: "a"}, row{ID: "b"}, row{ID: "c"})
	backend.puts = 0

	timeout := errors.New("connection reset")
	backend.getErr = timeout

	called := false
	err := c.Modify(ctx, func(rows []row) ([]row, error) {
		called = true
		return append([]row{{ID: "d"}}, rows...), nil
	})
	assert.ErrorIs(t, err, timeout)
	assert.False(t, called)
	assert.Zero(t, backend.puts)
	assert.NotEmpty(t, log.EntriesAt("error"))

	backend.getErr = nil
	assert.Equal(t, []row{{ID: "a"}, {ID: "b"}, {ID: "c"}}, c.Load(ctx))
}

func TestCollection_ModifyWriteFailure(t *testing.T) {
	backend := &flakyBackend{MemoryBackend: storage.NewMemoryBackend(), putErr: errors.New("read only")}
	c := New[row](backend, "data", logger.NewTestLogger())

	err := c.Modify(context.Background(), func(rows []row) ([]row, error) {
		return append(rows, row{ID: "a"}), nil
	})
	assert.ErrorIs(t, err, backend.putErr)
	assert.Equal(t, 1, backend.puts)
}

func TestCollection_ConcurrentModify(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Modify(ctx, func(rows []row) ([]row, error) {
				return append(rows, row{ID: "x"}), nil
			})
		}()
	}
	wg.Wait()

	assert.Len(t, c.Load(ctx), 50)
}
