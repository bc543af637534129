package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLeaguesCmd creates and returns a new leagues command
func newLeaguesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leagues",
		Short: "List the tournament leagues",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			leagues, err := client.Leagues(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				printJSON(leagues)
				return nil
			}

			for _, l := range leagues {
				status := "active"
				if !l.IsActive {
					status = "inactive"
				}
				fmt.Printf("%-12s %-24s entry %4d coins  max %3d players  [%s]\n",
					l.ID, l.Name, l.EntryFee, l.MaxPlayers, status)
			}
			return nil
		},
	}
}

// newRoomsCmd creates and returns a new rooms command
func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms <league-id>",
		Short: "List the rooms of a league",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			rooms, err := client.Rooms(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				printJSON(rooms)
				return nil
			}

			for _, r := range rooms {
				fmt.Printf("%-10s %-28s %3d/%-3d players  entry %4d coins  [%s]\n",
					r.ID, r.Name, r.CurrentPlayers, r.MaxPlayers, r.EntryFee, r.Status)
			}
			return nil
		},
	}
}

// newWalletCmd creates and returns a new wallet command
func newWalletCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wallet",
		Short: "Show the coin balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			w, err := client.Wallet(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				printJSON(w)
				return nil
			}

			fmt.Printf("Balance: %d coins\n", w.Balance)
			return nil
		},
	}
}

// newLeaderboardCmd creates and returns a new leaderboard command
func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the global leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			limit, _ := cmd.Flags().GetInt("limit")

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			lb, err := client.Leaderboard(cmd.Context(), page, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				printJSON(lb)
				return nil
			}

			for _, e := range lb.Entries {
				fmt.Printf("%3d. %-20s %6d pts  %5.1f%% win rate\n",
					e.Rank, e.Username, e.Points, e.WinRate*100)
			}
			return nil
		},
	}

	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("limit", 20, "Entries per page")
	return cmd
}
