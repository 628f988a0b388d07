package storage

import (
	"context"
	"testing"

	"github.com/hairizuan-noorazman/user-registry/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLBackend(t *testing.T) *SQLBackend {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &Slot{})
	return NewSQLBackend(db)
}

func TestSQLBackend(t *testing.T) {
	testBackendContract(t, setupSQLBackend(t))
}

func TestSQLBackend_UpsertKeepsSingleRow(t *testing.T) {
	ctx := context.Background()
	b := setupSQLBackend(t)

	require.NoError(t, b.Put(ctx, "data", []byte("one")))
	require.NoError(t, b.Put(ctx, "data", []byte("two")))

	var count int64
	require.NoError(t, b.db.Model(&Slot{}).Where("slot_key = ?", "data").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := b.Get(ctx, "data")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestSQLBackend_ReadsExistingRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &Slot{})
	testutil.CreateFixtures(t, db, &Slot{Key: "data", Value: []byte(`[]`)})

	got, err := NewSQLBackend(db).Get(context.Background(), "data")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}
