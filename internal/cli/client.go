package cli

import (
	"fmt"
	"os"

	"github.com/arenaleague/arenaclient/pkg/api"
	"github.com/arenaleague/arenaclient/pkg/session"
	"github.com/arenaleague/arenaclient/pkg/transport"
)

// sessionStore opens the file-backed credential store next to the config file.
func sessionStore() (*session.FileStore, error) {
	return session.NewFileStore("")
}

// newAPIClient builds the API client with the CLI's terminal side effects
// wired into the pipeline hooks. The hooks are the CLI analog of the web
// app's redirects: a dead session tells the user to log in again, a forbidden
// resource tells them they lack access.
func newAPIClient() (*api.Client, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}

	store, err := sessionStore()
	if err != nil {
		return nil, err
	}

	return api.New(cfg.ServerURL, store, api.WithHooks(transport.Hooks{
		OnSessionExpired: func() {
			warnLabel.Fprintln(os.Stderr, "Session expired. Run 'arenactl login' to sign in again.")
		},
		OnForbidden: func() {
			warnLabel.Fprintln(os.Stderr, "You do not have access to that resource.")
		},
	}))
}
