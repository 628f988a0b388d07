package testutil

import (
	"testing"

	"gorm.io/gorm"
)

// CreateFixtures inserts rows directly, bypassing the code under test.
func CreateFixtures(t *testing.T, db *gorm.DB, models ...interface{}) {
	t.Helper()
	for _, model := range models {
		if err := db.Create(model).Error; err != nil {
			t.Fatalf("failed to create fixture: %v", err)
		}
	}
}
