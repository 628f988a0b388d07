// Package collection persists an ordered list of records as one serialized
// JSON array under a single storage key.
//
// Every mutation is a read-modify-write of the whole array. Modify holds a
// mutex for the entire cycle, so writers in this process never interleave;
// there is no coordination with other processes.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hairizuan-noorazman/user-registry/logger"
	"github.com/hairizuan-noorazman/user-registry/storage"
)

// Collection is the durable list of T stored under one key.
type Collection[T any] struct {
	backend storage.Backend
	key     string
	logger  logger.Logger

	mu sync.Mutex
}

// New binds a collection to key on backend. Nothing is read or written until
// the first Load or Modify; an absent key reads as an empty collection.
func New[T any](backend storage.Backend, key string, log logger.Logger) *Collection[T] {
	return &Collection[T]{
		backend: backend,
		key:     key,
		logger:  log.WithFields(logger.Fields{"collection": key}),
	}
}

// Load returns the stored records. Absent or malformed data, and backend read
// failures, all degrade to an empty collection.
func (c *Collection[T]) Load(ctx context.Context) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		c.logger.Error(ctx, "failed to read collection; using empty collection", logger.Fields{
			"error": err.Error(),
		})
		return []T{}
	}
	return items
}

// Modify hands the current records to fn and persists whatever it returns.
// When fn fails, or the current records cannot be read, nothing is written
// and the error is returned. fn must not retain or mutate its argument.
func (c *Collection[T]) Modify(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.load(ctx)
	if err != nil {
		c.logger.Error(ctx, "failed to read collection; write skipped", logger.Fields{
			"error": err.Error(),
		})
		return fmt.Errorf("failed to read collection: %w", err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	return c.store(ctx, next)
}

// load reads the slot. Only a backend failure is an error: an absent or
// malformed slot reads as empty.
func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	data, err := c.backend.Get(ctx, c.key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn(ctx, "malformed collection data; using empty collection", logger.Fields{
			"error": err.Error(),
			"bytes": len(data),
		})
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) store(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	if err := c.backend.Put(ctx, c.key, data); err != nil {
		c.logger.Error(ctx, "failed to write collection", logger.Fields{
			"error": err.Error(),
		})
		return fmt.Errorf("failed to write collection: %w", err)
	}

	c.logger.Debug(ctx, "collection written", logger.Fields{
		"count": len(items),
	})
	return nil
}
