package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the CLI version, set at build time via -ldflags.
var Version = "dev"

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(map[string]string{"version": Version})
			} else {
				fmt.Println(Version)
			}
		},
	}
}
