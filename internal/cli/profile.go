package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arenaleague/arenaclient/pkg/api"
)

// newProfileCmd creates and returns a new profile command
func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update your profile",
		Long: `Profile updates the mutable account fields. Fields left at their flag
defaults keep their current values, fetched before the update.

Example:
  arenactl profile --free-fire-name "Player One"`,
		RunE: runProfile,
	}

	cmd.Flags().String("username", "", "New username")
	cmd.Flags().Int("age", 0, "New age")
	cmd.Flags().String("free-fire-id", "", "New Free Fire player ID")
	cmd.Flags().String("free-fire-name", "", "New Free Fire in-game name")
	return cmd
}

func runProfile(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}

	current, err := client.Me(cmd.Context())
	if err != nil {
		return err
	}

	req := api.UpdateProfileRequest{
		Username:     current.Username,
		Age:          current.Age,
		FreeFireID:   current.FreeFireID,
		FreeFireName: current.FreeFireName,
	}
	if v, _ := cmd.Flags().GetString("username"); v != "" {
		req.Username = v
	}
	if v, _ := cmd.Flags().GetInt("age"); v != 0 {
		req.Age = v
	}
	if v, _ := cmd.Flags().GetString("free-fire-id"); v != "" {
		req.FreeFireID = v
	}
	if v, _ := cmd.Flags().GetString("free-fire-name"); v != "" {
		req.FreeFireName = v
	}

	user, err := client.UpdateProfile(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("profile update failed: %w", err)
	}

	if jsonOutput {
		printJSON(user)
	} else {
		okLabel.Printf("✓ Profile updated for %s\n", user.Username)
	}
	return nil
}
