package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newMeCmd creates and returns a new me command
func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			user, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				printJSON(user)
				return nil
			}

			fmt.Printf("Username:       %s\n", user.Username)
			fmt.Printf("Email:          %s\n", user.Email)
			fmt.Printf("Free Fire ID:   %s\n", user.FreeFireID)
			fmt.Printf("Free Fire name: %s\n", user.FreeFireName)
			if user.Rank != "" {
				fmt.Printf("Rank:           %s\n", user.Rank)
			}
			if user.IsAdmin {
				fmt.Println("Role:           admin")
			}
			return nil
		},
	}
}
