package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arenaleague/arenaclient/pkg/livechannel"
)

// newWatchCmd creates and returns a new watch command
func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <room-id>",
		Short: "Watch a room's live occupancy feed",
		Long: `Watch subscribes to a room's live channel and prints occupancy and status
updates as they arrive. The stream ends when the connection drops or on
Ctrl-C.

Example:
  arenactl watch GLD001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig()
			if cfg == nil {
				return fmt.Errorf("no configuration loaded")
			}

			store, err := sessionStore()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			manager := livechannel.NewManager(cfg.WSURL, store)
			defer manager.Close()

			events, err := manager.Connect(ctx, args[0])
			if err != nil {
				return err
			}

			if !jsonOutput {
				okLabel.Printf("✓ Watching room %s (Ctrl-C to stop)\n", args[0])
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-events:
					if !ok {
						warnLabel.Fprintln(os.Stderr, "Connection closed. Run the command again to reconnect.")
						return nil
					}
					if jsonOutput {
						printJSON(ev)
					} else {
						fmt.Printf("room %s: %d/%d players [%s]\n",
							ev.RoomID, ev.CurrentPlayers, ev.MaxPlayers, ev.Status)
					}
				}
			}
		},
	}
}
