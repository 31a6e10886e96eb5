package testdata

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jordanlanch/adcreativelab/pkg/database"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated in-memory SQLite database private to t.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	client, err := database.NewSQLiteClient("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client.DB
}
