package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipecatalog/internal/api"
	"recipecatalog/internal/config"
	"recipecatalog/internal/platform/logger"
	"recipecatalog/internal/recipe"
)

var (
	configPath string
	verbose    bool
	addr       string
)

var rootCmd = &cobra.Command{
	Use:           "recipes-api",
	Short:         "Serve the recipe catalog over HTTP",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServer,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, err := recipe.NewStore(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("error creating recipe store: %w", err)
	}
	defer store.Close()
	store.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	handler := api.NewHandler(store, cfg.GetQueryTimeout(), log)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(cfg, handler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server is running",
			zap.String("addr", cfg.Server.Addr),
			zap.String("api", cfg.Server.BasePath+"/recipes"),
			zap.String("driver", cfg.Database.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newRouter wires middleware and routes. Recipe endpoints live under
// server.base_path; the health probe stays at the root.
func newRouter(cfg *config.Config, handler *api.Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinMiddleware(log))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic serving request", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
	}))
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	handler.RegisterRoutes(r.Group(cfg.Server.BasePath))
	r.GET("/health", handler.Health)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	for _, o := range origins {
		if o == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	config.AllowOrigins = origins
	return config
}
