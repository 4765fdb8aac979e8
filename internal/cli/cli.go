// Package cli implements the qtopo command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/qforge/qtopo/pkg/buildinfo"
	"github.com/qforge/qtopo/pkg/client"
	"github.com/qforge/qtopo/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "qtopo"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ServerURL overrides the configured server, set by --server.
	ServerURL string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "qtopo",
		Short:        "Qtopo builds and simulates hybrid classical/quantum network topologies",
		Long:         `Qtopo is a CLI for designing hybrid classical/quantum network topologies, syncing them with a topology server, and driving simulations over them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ServerURL, "server", "", "topology server URL (overrides config)")

	// Register all subcommands
	root.AddCommand(c.pushCommand())
	root.AddCommand(c.pullCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.syncCommand())
	root.AddCommand(c.simCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.loginCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Client Factory
// =============================================================================

// newClient resolves server URL and user identity from flags, the session,
// and the config file, in that order.
func (c *CLI) newClient(ctx context.Context) (*client.Client, *session.State, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	serverURL := c.ServerURL
	if serverURL == "" {
		serverURL = cfg.ServerURL
	}

	store, err := session.NewFileStore("")
	if err != nil {
		return nil, nil, err
	}
	state, err := store.Load(ctx)
	if err != nil {
		c.Logger.Warn("could not read session", "err", err)
	}
	userID := cfg.UserID
	if state != nil && state.UserID != "" {
		userID = state.UserID
	}

	return client.New(serverURL, userID, c.Logger), state, nil
}

// sessionStore opens the default on-disk session store.
func sessionStore() (*session.FileStore, error) {
	return session.NewFileStore("")
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/qtopo/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/qtopo/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
