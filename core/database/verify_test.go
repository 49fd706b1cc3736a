package database_test

import (
	"testing"

	"order-importer/core/database"
	"order-importer/feature/orders/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyImportSchema(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	t.Run("MissingTables", func(t *testing.T) {
		err := database.VerifyImportSchema(db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("AfterMigrate", func(t *testing.T) {
		require.NoError(t, models.Migrate(db))
		assert.NoError(t, database.VerifyImportSchema(db))
	})

	t.Run("MissingColumn", func(t *testing.T) {
		require.NoError(t, db.Exec("ALTER TABLE products RENAME COLUMN description TO blurb").Error)
		err := database.VerifyImportSchema(db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "products")
		assert.Contains(t, err.Error(), "description")
	})
}
