package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listUsersCmd = &cobra.Command{
	Use:   "list-users",
	Short: "List all registered accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := users.List()
		if err != nil {
			return fmt.Errorf("listing users: %w", err)
		}

		if len(accounts) == 0 {
			fmt.Println("no registered users")
			return nil
		}

		fmt.Printf("%-38s %-30s %-10s %s\n", "ID", "IDENTIFIER", "VERIFIED", "CREATED")
		for _, u := range accounts {
			fmt.Printf("%-38s %-30s %-10t %s\n",
				u.ID, u.Identifier, u.Verified, u.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("\n%d user(s)\n", len(accounts))
		return nil
	},
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete-user <identifier>",
	Short: "Delete an account by its identifier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		identifier := args[0]

		deleted, err := users.Delete(identifier)
		if err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		if deleted == 0 {
			return fmt.Errorf("no user found for identifier %q", identifier)
		}

		// Drop any pending challenge too so the identifier is fully reusable.
		if err := otps.Delete(identifier); err != nil {
			return fmt.Errorf("deleting pending OTP challenge: %w", err)
		}

		fmt.Printf("deleted user %s\n", identifier)
		return nil
	},
}

var purgeOtpsCmd = &cobra.Command{
	Use:   "purge-otps",
	Short: "Delete expired OTP challenges",
	RunE: func(cmd *cobra.Command, args []string) error {
		purged, err := otps.PurgeExpired()
		if err != nil {
			return fmt.Errorf("purging challenges: %w", err)
		}
		fmt.Printf("purged %d expired challenge(s)\n", purged)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listUsersCmd)
	rootCmd.AddCommand(deleteUserCmd)
	rootCmd.AddCommand(purgeOtpsCmd)
}
