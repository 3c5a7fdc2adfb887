package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"recipecatalog/internal/config"
	"recipecatalog/internal/importer"
	"recipecatalog/internal/recipe"
)

const sampleRecipes = `[
  {"title": "Sweet Potato Pie", "cuisine": "Southern Recipes", "rating": 4.8,
   "prep_time": 15, "cook_time": 100, "total_time": 115, "serves": "8 servings",
   "nutrients": {"calories": "389 kcal", "proteinContent": "5 g"}},
  {"title": "NaN", "cuisine": "Italian", "rating": "NaN", "total_time": "NaN", "nutrients": "NaN"},
  "not an object"
]`

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.URL = filepath.Join(t.TempDir(), "recipes.db")
	cfg.Import.BatchSize = 2
	return cfg
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportCatalog(t *testing.T) {
	cfg := sqliteConfig(t)
	path := writeFile(t, sampleRecipes)

	require.NoError(t, importCatalog(context.Background(), cfg, path, zaptest.NewLogger(t)))

	store, err := recipe.NewStore(cfg.Database.Driver, cfg.Database.URL)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	total, err := store.CountRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	rows, err := store.ListRecipes(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	pie := rows[0]
	assert.Equal(t, int64(1), pie.ID)
	require.NotNil(t, pie.Title)
	assert.Equal(t, "Sweet Potato Pie", *pie.Title)
	calories, ok := pie.Nutrients.Calories()
	assert.True(t, ok)
	assert.Equal(t, 389.0, calories)

	for _, r := range rows[1:] {
		assert.Nil(t, r.Rating)
		assert.Nil(t, r.TotalTime)
		assert.Nil(t, r.Nutrients)
	}

	// Running again replaces the catalog and restarts ids.
	require.NoError(t, importCatalog(ctx, cfg, path, zaptest.NewLogger(t)))
	total, err = store.CountRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	rows, err = store.ListRecipes(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows[0].ID)
}

func TestImportCatalog_BadFileLeavesDatabaseUntouched(t *testing.T) {
	cfg := sqliteConfig(t)

	err := importCatalog(context.Background(), cfg, filepath.Join(t.TempDir(), "missing.json"), zaptest.NewLogger(t))
	assert.ErrorIs(t, err, importer.ErrFileNotFound)

	err = importCatalog(context.Background(), cfg, writeFile(t, `{"title":"x"}`), zaptest.NewLogger(t))
	assert.ErrorIs(t, err, importer.ErrNotArray)

	_, statErr := os.Stat(cfg.Database.URL)
	assert.True(t, os.IsNotExist(statErr), "database file should not be created")
}

func TestRunImport_Flags(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "recipes.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", dbPath)
	t.Setenv("LOG_LEVEL", "error")

	configPath = "does-not-exist.yaml"
	batchSize = 1
	defer func() {
		configPath = "config.yaml"
		batchSize = 0
	}()

	require.NoError(t, runImport(rootCmd, []string{writeFile(t, sampleRecipes)}))

	store, err := recipe.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	total, err := store.CountRecipes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestRunImport_InvalidBatchSize(t *testing.T) {
	configPath = "does-not-exist.yaml"
	batchSize = 5000
	defer func() {
		configPath = "config.yaml"
		batchSize = 0
	}()

	err := runImport(rootCmd, []string{"whatever.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_size")
}
