package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qforge/qtopo/pkg/session"
)

// simCommand creates the sim command group for simulation control.
func (c *CLI) simCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Control simulations on the server",
	}

	cmd.AddCommand(c.simStartCommand())
	cmd.AddCommand(c.simStopCommand())
	cmd.AddCommand(c.simStatusCommand())
	cmd.AddCommand(c.simMessageCommand())

	return cmd
}

// simStartCommand creates the "sim start" subcommand.
func (c *CLI) simStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start <pk>",
		Short: "Start a simulation over a saved topology",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cl, state, err := c.newClient(ctx)
			if err != nil {
				return err
			}

			snap, err := cl.FetchTopology(ctx, args[0])
			if err != nil {
				return err
			}
			if snap == nil {
				return fmt.Errorf("topology %s not found", args[0])
			}

			sp := newSpinnerWithContext(ctx, "Starting simulation...")
			sp.Start()
			simID, err := cl.StartSimulation(ctx, snap)
			sp.Stop()
			if err != nil {
				return err
			}

			if state == nil {
				state = &session.State{}
			}
			state.WorldID = snap.WorldID
			state.SimulationID = simID
			state.Running = true
			if store, serr := sessionStore(); serr == nil {
				if serr := store.Save(ctx, state); serr != nil {
					c.Logger.Warn("could not persist session", "err", serr)
				}
			}

			printSuccess("Simulation started")
			printKeyValue("simulation", simID)
			printNextStep("Stream events", "qtopo watch")
			return nil
		},
	}
}

// simStopCommand creates the "sim stop" subcommand.
func (c *CLI) simStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cl, state, err := c.newClient(ctx)
			if err != nil {
				return err
			}

			if err := cl.StopSimulation(ctx); err != nil {
				return err
			}

			if state != nil {
				state.EndSimulation()
				if store, serr := sessionStore(); serr == nil {
					if serr := store.Save(ctx, state); serr != nil {
						c.Logger.Warn("could not persist session", "err", serr)
					}
				}
			}

			printSuccess("Simulation stopped")
			return nil
		},
	}
}

// simStatusCommand creates the "sim status" subcommand.
func (c *CLI) simStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a simulation is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, _, err := c.newClient(cmd.Context())
			if err != nil {
				return err
			}

			running, err := cl.SimulationStatus(cmd.Context())
			if err != nil {
				return err
			}
			if running {
				printSuccess("Simulation running")
			} else {
				printInfo("No simulation running")
			}
			return nil
		},
	}
}

// simMessageCommand creates the "sim message" subcommand, which injects a
// point-to-point message into the running simulation.
func (c *CLI) simMessageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "message <from> <to> <text>",
		Short: "Send a message between two hosts in the running simulation",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, _, err := c.newClient(cmd.Context())
			if err != nil {
				return err
			}

			if err := cl.SendMessage(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			printSuccess("Message queued %s %s %s", args[0], StyleDim.Render(iconArrow), args[1])
			return nil
		},
	}
}
