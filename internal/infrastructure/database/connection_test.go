package database_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/persistence"
	"github.com/andrescamacho/tradeup-bot/internal/infrastructure/config"
	"github.com/andrescamacho/tradeup-bot/internal/infrastructure/database"
)

func TestOpen_SQLiteFileCreatesDirectoryAndTables(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "state", "journal.db")

	// Act
	db, err := database.Open(&config.DatabaseConfig{Type: "sqlite", Path: path})

	// Assert
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
	for _, model := range persistence.AllModels() {
		assert.True(t, db.Migrator().HasTable(model), "%T table missing", model)
	}

	var journalMode string
	require.NoError(t, db.Raw("PRAGMA journal_mode").Scan(&journalMode).Error)
	assert.Equal(t, "wal", journalMode)
}

func TestNewConnection_UnsupportedType(t *testing.T) {
	_, err := database.NewConnection(&config.DatabaseConfig{Type: "mysql"})

	assert.ErrorContains(t, err, "unsupported database type: mysql")
}

func TestClose_NilIsNoop(t *testing.T) {
	assert.NoError(t, database.Close(nil))
}
