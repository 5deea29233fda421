// Package stress parses stress command configuration and serves the MCP tools.
package stress

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	entrypoint "github.com/louisbranch/wfrp-stress/internal/platform/cmd"
	"github.com/louisbranch/wfrp-stress/internal/platform/config"
	"github.com/louisbranch/wfrp-stress/internal/platform/logging"
	mcpservice "github.com/louisbranch/wfrp-stress/internal/services/mcp/service"
	"github.com/louisbranch/wfrp-stress/internal/services/stress/app"
	"github.com/louisbranch/wfrp-stress/internal/services/stress/storage/sqlite"
	"go.uber.org/zap"
)

// Config holds stress command configuration. Environment keys carry the
// WFRP_STRESS_ prefix.
type Config struct {
	DBPath       string   `env:"DB_PATH"           envDefault:"data/stress.db"`
	Transport    string   `env:"MCP_TRANSPORT"     envDefault:"stdio"`
	HTTPAddr     string   `env:"MCP_HTTP_ADDR"     envDefault:"localhost:8091"`
	AllowedHosts []string `env:"MCP_ALLOWED_HOSTS" envSeparator:","`
	LogLevel     string   `env:"LOG_LEVEL"         envDefault:"info"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	return bindFlags(fs, args, cfg)
}

func parseConfigFrom(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if err := config.ParseEnvFrom(&cfg, environ); err != nil {
		return Config{}, err
	}
	return bindFlags(fs, args, cfg)
}

func bindFlags(fs *flag.FlagSet, args []string, cfg Config) (Config, error) {
	if fs == nil {
		return Config{}, fmt.Errorf("flag parser is required")
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, or error")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the store and serves the stress MCP tools until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	transport, err := mcpservice.ParseTransportKind(cfg.Transport)
	if err != nil {
		return err
	}
	logger, err := logging.New(entrypoint.ServiceStress, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dbPath := strings.TrimSpace(cfg.DBPath)
	if dbPath == "" {
		return fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceStress, func(ctx context.Context) error {
		store, err := sqlite.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open stress store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("close stress store", zap.Error(err))
			}
		}()

		svc := app.NewService(store, app.WithLogger(logger))
		logger.Info("serving stress MCP",
			zap.String("transport", string(transport)),
			zap.String("db", dbPath),
		)
		return mcpservice.Run(ctx, svc, mcpservice.Config{
			Transport:    transport,
			HTTPAddr:     cfg.HTTPAddr,
			AllowedHosts: cfg.AllowedHosts,
			Logger:       logger,
		})
	})
}
