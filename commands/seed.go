package commands

import (
	"log/slog"

	"github.com/junaidrashid-git/aurelia-api/auth"
	"github.com/junaidrashid-git/aurelia-api/database"
	"github.com/spf13/cobra"
)

var reset bool

// seedCmd loads the demo catalog and accounts
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog and accounts",
	Long: `Populate the database with demo products, an admin account and a demo
customer. Existing data is kept unless --reset is given.

Examples:
  storefront seed              # skip whatever already exists
  storefront seed --reset      # drop every table and start over`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		db, err := openDatabase(cfg, logger)
		if err != nil {
			return err
		}

		result, err := database.Seed(cmd.Context(), db, reset, auth.HashPassword, logger)
		if err != nil {
			return err
		}
		logger.Info("database seeded",
			slog.Int("products", result.Products),
			slog.Int("accounts", result.Accounts),
		)
		for _, acct := range database.SeedAccounts {
			logger.Info("seed account", slog.String("email", acct.Email), slog.String("role", string(acct.Role)))
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&reset, "reset", false, "Drop and recreate every table before seeding")
	rootCmd.AddCommand(seedCmd)
}
