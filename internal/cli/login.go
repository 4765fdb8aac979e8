package cli

import (
	"github.com/spf13/cobra"

	"github.com/qforge/qtopo/pkg/client"
	"github.com/qforge/qtopo/pkg/session"
)

// loginCommand creates the login command, which registers a user with the
// server and stores the identity in the local session.
func (c *CLI) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login <user-id>",
		Short: "Register a user with the server and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			serverURL := c.ServerURL
			if serverURL == "" {
				serverURL = cfg.ServerURL
			}

			cl := client.New(serverURL, userID, c.Logger)
			if err := cl.RegisterUser(ctx, userID); err != nil {
				return err
			}

			store, err := sessionStore()
			if err != nil {
				return err
			}
			state, err := store.Load(ctx)
			if err != nil || state == nil {
				state = &session.State{}
			}
			state.UserID = userID
			if err := store.Save(ctx, state); err != nil {
				return err
			}

			printSuccess("Logged in as %s", StyleHighlight.Render(userID))
			printDetail("Session: %s", store.Path())
			return nil
		},
	}
}
