package cli

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arenaleague/arenaclient/pkg/api"
)

// newRegisterCmd creates and returns a new register command
func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new Arena account",
		Long: `Register creates an unverified account and sends a one-time password to
the given email address. Complete the registration with 'arenactl verify'.

Example:
  arenactl register --username player1 --email player@example.com --age 19 \
      --free-fire-id 123456 --free-fire-name "Player One"`,
		RunE: runRegister,
	}

	cmd.Flags().String("username", "", "Account username")
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().Int("age", 0, "Player age")
	cmd.Flags().String("password", "", "Account password (prompted when omitted)")
	cmd.Flags().String("free-fire-id", "", "Free Fire player ID")
	cmd.Flags().String("free-fire-name", "", "Free Fire in-game name")
	return cmd
}

func runRegister(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	age, _ := cmd.Flags().GetInt("age")
	password, _ := cmd.Flags().GetString("password")
	ffID, _ := cmd.Flags().GetString("free-fire-id")
	ffName, _ := cmd.Flags().GetString("free-fire-name")

	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("unable to read password: %w", err)
		}
		fmt.Fprint(os.Stderr, "Confirm password: ")
		confirm, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("unable to read password: %w", err)
		}
		if string(raw) != string(confirm) {
			return fmt.Errorf("passwords do not match")
		}
		password = string(raw)
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	resp, err := client.Register(cmd.Context(), api.RegisterRequest{
		Username:        username,
		Email:           email,
		Age:             age,
		Password:        password,
		ConfirmPassword: password,
		FreeFireID:      ffID,
		FreeFireName:    ffName,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{"status": "success", "message": resp.Message})
	} else {
		okLabel.Printf("✓ %s\n", resp.Message)
		fmt.Printf("Complete the registration with: arenactl verify --email %s --otp <code>\n", email)
	}
	return nil
}

// newVerifyCmd creates and returns a new verify command
func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a new account with the emailed OTP",
		Long: `Verify completes the registration with the one-time password that was sent
by email. On success the session credentials are stored.

Example:
  arenactl verify --email player@example.com --otp 123456`,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			otp, _ := cmd.Flags().GetString("otp")
			if email == "" || otp == "" {
				return fmt.Errorf("--email and --otp are required")
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			resp, err := client.VerifyRegister(cmd.Context(), email, otp)
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}

			if jsonOutput {
				printJSON(map[string]string{
					"status":   "success",
					"username": resp.User.Username,
				})
			} else {
				okLabel.Printf("✓ Account verified; logged in as %s\n", resp.User.Username)
			}
			return nil
		},
	}

	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("otp", "", "One-time password from the verification email")
	return cmd
}
