package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newHistoryCmd creates and returns a new history command
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show your match history",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			limit, _ := cmd.Flags().GetInt("limit")

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			history, err := client.Matches(cmd.Context(), page, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				printJSON(history)
				return nil
			}

			for _, m := range history.Matches {
				fmt.Printf("%s  %-24s %-5s %3d kills  %+5d coins  [%s]\n",
					m.PlayedAt.Format("2006-01-02"), m.RoomName, m.Result,
					m.Kills, m.CoinsWon, m.Division)
			}
			if history.Total > len(history.Matches) {
				fmt.Printf("Showing %d of %d matches (--page/--limit to page)\n",
					len(history.Matches), history.Total)
			}
			return nil
		},
	}

	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("limit", 20, "Matches per page")
	return cmd
}

// newPackagesCmd creates and returns a new packages command
func newPackagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packages",
		Short: "List the purchasable coin packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			packages, err := client.CoinPackages(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				printJSON(packages)
				return nil
			}

			for _, p := range packages {
				marker := ""
				if p.IsPopular {
					marker = "  (popular)"
				}
				fmt.Printf("%-12s %6d coins  ₹%d%s\n", p.ID, p.Coins, p.PriceINR, marker)
			}
			return nil
		},
	}
}
