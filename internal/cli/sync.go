package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/qforge/qtopo/pkg/autosave"
	"github.com/qforge/qtopo/pkg/cache"
	qerrors "github.com/qforge/qtopo/pkg/errors"
	"github.com/qforge/qtopo/pkg/snapshot"
	"github.com/qforge/qtopo/pkg/topology"
)

// pushCommand creates the push command, which uploads a topology snapshot
// to the server.
func (c *CLI) pushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push <snapshot.json>",
		Short: "Upload a topology snapshot to the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, _, err := c.newClient(cmd.Context())
			if err != nil {
				return err
			}

			snap, err := readSnapshot(args[0])
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			sp := newSpinnerWithContext(cmd.Context(), "Uploading topology...")
			sp.Start()
			err = cl.SaveTopology(cmd.Context(), snap)
			sp.Stop()
			if err != nil {
				return err
			}
			prog.done("Uploaded topology")

			// Persist the assigned identity so a repeated push updates
			// the same record.
			data, err := snapshot.Marshal(snap)
			if err == nil {
				err = os.WriteFile(args[0], data, 0o644)
			}
			if err != nil {
				printWarning("Saved on server but could not update %s: %v", args[0], err)
			}

			printSuccess("Saved topology %s", StyleHighlight.Render(snap.Name))
			printKeyValue("pk", snap.PK)
			if snap.WorldID != "" {
				printKeyValue("world", snap.WorldID)
			}
			hosts, links := snapshotStats(snap)
			printStats(hosts, links, false)
			return nil
		},
	}
}

// pullCommand creates the pull command, which downloads a topology snapshot
// from the server.
func (c *CLI) pullCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull <pk>",
		Short: "Download a topology snapshot from the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, _, err := c.newClient(cmd.Context())
			if err != nil {
				return err
			}

			snap, err := cl.FetchTopology(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if snap == nil {
				return qerrors.New(qerrors.ErrCodeNotFound, "no topology with pk %s", args[0])
			}

			data, err := snapshot.Marshal(snap)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Pulled topology %s", StyleHighlight.Render(snap.Name))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write snapshot to file instead of stdout")
	return cmd
}

// listCommand creates the list command, which prints the server's saved
// topologies.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List topologies saved on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, _, err := c.newClient(cmd.Context())
			if err != nil {
				return err
			}

			summaries, err := cl.ListTopologies(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No topologies saved")
				return nil
			}

			for _, s := range summaries {
				name := s.Name
				if name == "" {
					name = "(unnamed)"
				}
				printKeyValue(name, s.PK)
			}
			printNewline()
			printDetail("%d topologies", len(summaries))
			return nil
		},
	}
}

// syncCommand creates the sync command, which watches a snapshot file and
// keeps the server copy current until interrupted.
func (c *CLI) syncCommand() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "sync <snapshot.json>",
		Short: "Continuously upload a topology file as it changes",
		Long:  `Sync watches a snapshot file and re-uploads it whenever the topology differs from the last persisted state. Runs until interrupted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cl, _, err := c.newClient(ctx)
			if err != nil {
				return err
			}

			if interval <= 0 {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				interval = time.Duration(cfg.AutosaveInterval) * time.Second
			}

			snap, err := readSnapshot(args[0])
			if err != nil {
				return err
			}

			g := topology.New()
			if err := snapshot.Import(g, snap, logger); err != nil {
				return err
			}

			// Exports carry structure only, so the saver stamps the
			// record identity back on before uploading. The server
			// assigns pk and world on the first save.
			save := autosave.SaverFunc(func(ctx context.Context, s *snapshot.Snapshot) error {
				s.PK, s.WorldID, s.Name = snap.PK, snap.WorldID, snap.Name
				if err := cl.SaveTopology(ctx, s); err != nil {
					return err
				}
				snap.PK, snap.WorldID = s.PK, s.WorldID
				return nil
			})

			loop := autosave.New(g, save, interval, logger)
			primeFromServer(ctx, loop, cl, snap.PK, logger)

			go pollFile(ctx, args[0], interval, g, logger)

			printInfo("Syncing %s every %s, press Ctrl+C to stop", args[0], interval)
			if err := loop.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "save check cadence (default from config)")
	return cmd
}

// primeFromServer seeds the loop baseline with the server's current copy,
// normalized through an import/export round trip so the digest is
// comparable with local exports. Failures just leave the baseline unset,
// which costs one redundant save.
func primeFromServer(ctx context.Context, loop *autosave.Loop, f autosave.Fetcher, pk string, logger *log.Logger) {
	if pk == "" {
		return
	}
	remote, err := f.FetchTopology(ctx, pk)
	if err != nil || remote == nil {
		return
	}
	rg := topology.New()
	if err := snapshot.Import(rg, remote, logger); err != nil {
		return
	}
	data, err := snapshot.Marshal(snapshot.Export(rg, logger))
	if err != nil {
		return
	}
	loop.Prime(data)
}

// pollFile re-reads path on the sync cadence and imports it into g when
// the content changed. Runs until ctx is cancelled.
func pollFile(ctx context.Context, path string, interval time.Duration, g *topology.Graph, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("could not re-read topology file", "path", path, "err", err)
			continue
		}
		digest := cache.Hash(data)
		if digest == last {
			continue
		}
		if _, err := snapshot.Load(g, data, logger); err != nil {
			logger.Warn("ignoring malformed topology file", "path", path, "err", err)
			continue
		}
		last = digest
	}
}
