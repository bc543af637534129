package cli

import (
	"github.com/spf13/cobra"
)

// newLogoutCmd creates and returns a new logout command
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Long:  `Logout removes the stored access and refresh tokens. Both slots are cleared together.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sessionStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}

			if jsonOutput {
				printJSON(map[string]string{"status": "success", "message": "Logged out"})
			} else {
				okLabel.Println("✓ Logged out")
			}
			return nil
		},
	}
}
