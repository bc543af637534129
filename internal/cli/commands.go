package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
	configFile string
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)
var warnLabel = color.New(color.FgYellow)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "arenactl [command] [flags]",
	Short: "Arena CLI - A command line interface for the Arena league backend",
	Long: `Arena CLI is a command line interface for the Arena league gaming backend.
It manages your session (login, logout, registration), shows your profile, wallet
and the leaderboard, and can watch a room's live occupancy feed.

Examples:
  # Log in and store the session
  arenactl login --email player@example.com

  # Show your profile
  arenactl me

  # List the rooms of a league
  arenactl rooms gold

  # Watch a room's live updates
  arenactl watch GLD001`,
	PersistentPreRun: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	// Set up persistent flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")

	// Add commands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigureCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newMeCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newPackagesCmd())
	rootCmd.AddCommand(newLeaguesCmd())
	rootCmd.AddCommand(newRoomsCmd())
	rootCmd.AddCommand(newWalletCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newWatchCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			kv := map[string]string{
				"error": err.Error(),
			}
			printJSON(kv)
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// preRunHandlePersistents handles persistent flags and configuration loading before command execution
func preRunHandlePersistents(cmd *cobra.Command, args []string) {
	// if a config file is provided, load config from config file
	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	// configure and version work without a loaded config
	isLocal := false
	c := cmd
	for c != nil {
		if c.Name() == "configure" || c.Name() == "version" {
			isLocal = true
			break
		}
		c = c.Parent()
	}
	if isLocal {
		return
	}

	if err := LoadConfig(configFile); err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'arenactl configure --server <url>' to create a configuration.\n")
		os.Exit(1)
	}
}

// printJSON prints the given data as indented JSON on stdout
func printJSON(data interface{}) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
