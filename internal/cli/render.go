package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qforge/qtopo/pkg/render"
	"github.com/qforge/qtopo/pkg/snapshot"
	"github.com/qforge/qtopo/pkg/topology"
)

// Output formats for the render command.
const (
	formatSVG = "svg"
	formatPNG = "png"
	formatDOT = "dot"
)

// renderCommand creates the render command, which draws a topology snapshot
// as a diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formats  string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "render <snapshot.json>",
		Short: "Render a topology snapshot as SVG, PNG, or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(args[0])
			if err != nil {
				return err
			}

			// Rebuild the graph; import logs skipped items.
			g := topology.New()
			if err := snapshot.Import(g, snap, loggerFromContext(cmd.Context())); err != nil {
				return err
			}

			dot := render.ToDOT(g, render.Options{Detailed: detailed})

			base := output
			if base == "" {
				base = strings.TrimSuffix(args[0], ".json")
			}

			for _, format := range parseFormats(formats) {
				var (
					data []byte
					err  error
				)
				switch format {
				case formatDOT:
					data = []byte(dot)
				case formatSVG:
					data, err = render.RenderSVG(cmd.Context(), dot)
				case formatPNG:
					data, err = render.RenderPNG(cmd.Context(), dot)
				default:
					return fmt.Errorf("unknown format %q (want svg, png, or dot)", format)
				}
				if err != nil {
					return err
				}

				path := base + "." + format
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				printFile(path)
			}

			printSuccess("Rendered %s", StyleHighlight.Render(snap.Name))
			printStats(g.NodeCount(), len(g.Connections()), false)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formats, "format", "f", formatSVG, "comma-separated output formats (svg,png,dot)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base name (default: input name)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include link metadata in edge labels")
	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(strings.ToLower(p))
	}
	return parts
}
