package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/junaidrashid-git/aurelia-api/config"
	"github.com/junaidrashid-git/aurelia-api/database"
	"github.com/junaidrashid-git/aurelia-api/logging"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// Global flags
	dbURL    string
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Aurelia Jewels storefront API",
	Long: `Backend for the Aurelia Jewels storefront: catalog, accounts, carts,
checkout and order management over a JSON REST API.

Configuration is read from .env and the environment (PORT, DATABASE_URL,
JWT_SECRET, ACCESS_TOKEN_EXPIRE_MINUTES, FRONTEND_URL, UPLOAD_DIR, LOG_LEVEL,
GIN_MODE).`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func openDatabase(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	driver, err := database.DriverFor(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected", slog.String("driver", string(driver)))
	return db, nil
}
