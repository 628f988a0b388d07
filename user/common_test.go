package user

import (
	"testing"

	"github.com/hairizuan-noorazman/user-registry/collection"
	"github.com/hairizuan-noorazman/user-registry/logger"
	"github.com/hairizuan-noorazman/user-registry/storage"
)

// setupTestStore creates a collection store on an in-memory backend.
func setupTestStore(t *testing.T) (*storage.MemoryBackend, *CollectionStore) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	log := logger.NewTestLogger()
	records := collection.New[User](backend, "data", log)
	return backend, NewCollectionStore(records, log)
}

// createTestUser creates a test user with default values and the given name.
func createTestUser(name, email string) *User {
	v := sampleValues()
	v.Name = name
	v.Email = email
	u := New(v)
	return &u
}
