package helpers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/persistence"
	"github.com/andrescamacho/tradeup-bot/internal/infrastructure/database"
)

// NewTestDB returns a private migrated in-memory database, closed when t finishes
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = database.Close(db) })

	return db
}

// SharedTestDB backs the godog suite. Opened once by TestMain, emptied before each scenario.
var SharedTestDB *gorm.DB

// InitializeSharedTestDB opens SharedTestDB
func InitializeSharedTestDB() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("failed to open shared test database: %w", err)
	}
	SharedTestDB = db
	return nil
}

// TruncateAllTables deletes every journal and log row from SharedTestDB
func TruncateAllTables() error {
	if SharedTestDB == nil {
		return fmt.Errorf("shared test database not initialized")
	}

	wipe := SharedTestDB.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range persistence.AllModels() {
		if err := wipe.Delete(model).Error; err != nil {
			return fmt.Errorf("failed to empty %T: %w", model, err)
		}
	}
	return nil
}

// CloseSharedTestDB closes SharedTestDB; safe to call when it was never opened
func CloseSharedTestDB() {
	_ = database.Close(SharedTestDB)
	SharedTestDB = nil
}
