// Package importer loads a JSON array of raw recipe records into the catalog.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"recipecatalog/internal/recipe"
)

// DefaultPath is used when no file is given on the command line.
const DefaultPath = "data/recipes.json"

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 100

var (
	// ErrFileNotFound is returned when the import file does not exist.
	ErrFileNotFound = errors.New("import file not found")
	// ErrNotArray is returned when the file is not a JSON array.
	ErrNotArray = errors.New("import file must contain a JSON array of recipes")
)

// Loader replaces the catalog contents.
type Loader interface {
	ReplaceRecipes(ctx context.Context, recipes []*recipe.Recipe, batchSize int, progress func(done, total int)) error
}

// Report summarizes an import run.
type Report struct {
	Read     int
	Imported int
	// NoCalories counts records whose calories cannot be filtered on.
	NoCalories int
}

// Importer runs one-shot catalog imports.
type Importer struct {
	loader    Loader
	batchSize int
	logger    *zap.Logger
}

// New creates an Importer. A non-positive batchSize selects DefaultBatchSize.
func New(loader Loader, batchSize int, logger *zap.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{loader: loader, batchSize: batchSize, logger: logger}
}

// ReadFile loads and decodes an import file. Callers read the file before
// opening the store, so file and format errors never touch the catalog.
func ReadFile(path string) ([]recipe.RawRecipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(data)
}

// Import sanitizes records and replaces the catalog with them.
func (im *Importer) Import(ctx context.Context, records []recipe.RawRecipe) (Report, error) {
	report := Report{Read: len(records)}
	im.logger.Info("Found recipes to import", zap.Int("count", len(records)))

	recipes := make([]*recipe.Recipe, 0, len(records))
	for _, raw := range records {
		r := recipe.Sanitize(raw)
		if _, ok := r.Nutrients.Calories(); !ok {
			report.NoCalories++
		}
		recipes = append(recipes, &r)
	}

	progress := func(done, total int) {
		report.Imported = done
		im.logger.Info(fmt.Sprintf("Imported %d/%d recipes...", done, total))
	}
	if err := im.loader.ReplaceRecipes(ctx, recipes, im.batchSize, progress); err != nil {
		return Report{Read: len(records)}, fmt.Errorf("failed to import recipes: %w", err)
	}
	report.Imported = len(recipes)

	im.logger.Info("Successfully imported recipes",
		zap.Int("imported", report.Imported),
		zap.Int("without_calories", report.NoCalories),
	)
	return report, nil
}

// Decode parses an import file. Elements that are not JSON objects become
// empty records, which import as all-null rows.
func Decode(data []byte) ([]recipe.RawRecipe, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotArray, err)
	}

	records := make([]recipe.RawRecipe, 0, len(elems))
	for _, elem := range elems {
		var raw recipe.RawRecipe
		if err := json.Unmarshal(elem, &raw); err != nil || raw == nil {
			raw = recipe.RawRecipe{}
		}
		records = append(records, raw)
	}
	return records, nil
}
