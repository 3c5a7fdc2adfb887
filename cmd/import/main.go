package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipecatalog/internal/config"
	"recipecatalog/internal/importer"
	"recipecatalog/internal/platform/logger"
	"recipecatalog/internal/recipe"
)

var (
	configPath string
	verbose    bool
	batchSize  int
)

var rootCmd = &cobra.Command{
	Use:   "recipes-import [path-to-recipes.json]",
	Short: "Replace the recipe catalog with the contents of a JSON file",
	Long: `Reads a JSON array of recipe records, sanitizes every record and loads
them into the recipes table after clearing it. The table is created if needed.

Without a path argument, import.path from the config file is used
(default data/recipes.json).`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runImport,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per INSERT (overrides import.batch_size)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if batchSize > 0 {
		cfg.Import.BatchSize = batchSize
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	path := cfg.Import.Path
	if len(args) == 1 {
		path = args[0]
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	return importCatalog(cmd.Context(), cfg, path, log)
}

// importCatalog decodes the file before opening the store, so a missing or
// malformed file never reaches the database.
func importCatalog(ctx context.Context, cfg *config.Config, path string, log *zap.Logger) error {
	log.Info("Reading recipes", zap.String("path", path))
	records, err := importer.ReadFile(path)
	if err != nil {
		return err
	}

	store, err := recipe.NewStore(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("error creating recipe store: %w", err)
	}
	defer store.Close()

	report, err := importer.New(store, cfg.Import.BatchSize, log).Import(ctx, records)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nSuccessfully imported %d recipes!\n", report.Imported)
	if report.NoCalories > 0 {
		fmt.Fprintf(os.Stdout, "%d recipes have no numeric calories and will not match calorie filters.\n", report.NoCalories)
	}
	return nil
}
