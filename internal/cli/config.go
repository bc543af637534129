package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// Config represents the configuration for the Arena CLI.
// Session credentials are not stored here; they live in the credentials file
// managed by the session package.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version"`
	// ServerURL is the base URL of the Arena backend
	ServerURL string `yaml:"server_url"`
	// WSURL is the websocket base URL; derived from ServerURL when empty
	WSURL string `yaml:"ws_url,omitempty"`
}

var config *Config

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/arena on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "arena", DefaultConfigFile), nil
}

// LoadConfig loads the configuration from the specified file, applying
// environment overrides (ARENA_SERVER_URL, ARENA_WS_URL). A .env file in the
// working directory is honored for development setups.
func LoadConfig(file string) error {
	godotenv.Load()

	var c Config
	yamlStr, err := os.ReadFile(file)
	if err == nil {
		if err := yaml.Unmarshal(yamlStr, &c); err != nil {
			return fmt.Errorf("unable to parse config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	if v := os.Getenv("ARENA_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("ARENA_WS_URL"); v != "" {
		c.WSURL = v
	}

	if c.ServerURL == "" {
		return errors.New("server URL is required")
	}
	c.ServerURL = MorphServer(c.ServerURL)
	if c.WSURL == "" {
		c.WSURL = deriveWSURL(c.ServerURL)
	}

	config = &c
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the current configuration to the specified file
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(file), os.ModePerm); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	if err := os.WriteFile(file, yamlStr, os.FileMode(0600)); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// MorphServer ensures the server URL is properly formatted
// Adds http:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	if server == "" {
		return server
	}

	server = strings.TrimRight(server, "/")

	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}

	return server
}

// deriveWSURL maps the API base URL onto the websocket scheme.
func deriveWSURL(serverURL string) string {
	if strings.HasPrefix(serverURL, "https://") {
		return "wss://" + strings.TrimPrefix(serverURL, "https://")
	}
	return "ws://" + strings.TrimPrefix(serverURL, "http://")
}

// newConfigureCmd creates the configure command, which writes the config file
func newConfigureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure the Arena CLI",
		Long: `Configure the Arena CLI with the backend server URL.

Example:
  arenactl configure --server https://api.arena.example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			wsURL, _ := cmd.Flags().GetString("ws")
			if server == "" {
				return errors.New("--server is required")
			}

			cfg := &Config{
				Version:   "v1",
				ServerURL: MorphServer(server),
				WSURL:     wsURL,
			}
			if err := cfg.WriteConfig(configFile); err != nil {
				return err
			}

			if jsonOutput {
				printJSON(map[string]string{"status": "success", "config": configFile})
			} else {
				okLabel.Printf("✓ Configuration written to %s\n", configFile)
			}
			return nil
		},
	}

	cmd.Flags().String("server", "", "Base URL of the Arena backend")
	cmd.Flags().String("ws", "", "Websocket base URL (derived from --server when omitted)")
	return cmd
}
