package cmd

import (
	"fmt"
	"os"

	"github.com/authgate/api/internal/config"
	"github.com/authgate/api/internal/database"
	"github.com/authgate/api/internal/store"
	"github.com/spf13/cobra"
)

var (
	users *store.UserStore
	otps  *store.OtpStore
)

var rootCmd = &cobra.Command{
	Use:   "authctl",
	Short: "Operator tooling for the authentication database",
	Long: `authctl operates directly on the authentication database.

Examples:
  authctl list-users                  Show all registered accounts
  authctl delete-user +15551234567    Remove an account by identifier
  authctl purge-otps                  Reclaim expired OTP challenges`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		db, err := database.Connect(cfg.DB)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		users = store.NewUserStore(db)
		otps = store.NewOtpStore(db)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
