package cli

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arenaleague/arenaclient/pkg/session"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the Arena backend",
		Long: `Login to the Arena backend and store the session credentials.
The access and refresh tokens are written to the credentials file, so
subsequent commands run without logging in again.

Example:
  arenactl login --email player@example.com
  arenactl login --email player@example.com --password secret`,
		RunE: runLogin,
	}

	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password (prompted when omitted)")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		return fmt.Errorf("no email provided. Use the --email flag")
	}

	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("unable to read password: %w", err)
		}
		password = string(raw)
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	resp, err := client.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	expiresAt := ""
	if exp, err := session.TokenExpiry(resp.AccessToken); err == nil {
		expiresAt = exp.Format(time.RFC3339)
	}

	if jsonOutput {
		kv := map[string]interface{}{
			"status":   "success",
			"message":  "Login successful",
			"username": resp.User.Username,
		}
		if expiresAt != "" {
			kv["expires_at"] = expiresAt
		}
		printJSON(kv)
	} else {
		okLabel.Printf("✓ Logged in as %s\n", resp.User.Username)
		if expiresAt != "" {
			fmt.Printf("Token expires at: %s\n", expiresAt)
		}
	}

	return nil
}
