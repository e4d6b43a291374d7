package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bitter/pkg/snapshot"
)

// layoutCommand creates the layout command for printing computed tile boxes.
func (c *CLI) layoutCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "layout [scene.toml]",
		Short: "Print the tile boxes computed for a scene",
		Long: `Print the tile boxes computed for a scene.

The layout command creates the scene's outputs, announces its surfaces and
prints the box every tiled surface receives, in traversal order. Boxes are in
layout coordinates: outputs are placed left to right.

With --json the full snapshot, including surfaces that are still waiting for
an output, is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "write the snapshot as JSON")

	return cmd
}

// runLayout applies the scene and prints its placements.
func (c *CLI) runLayout(ctx context.Context, path string, asJSON bool) error {
	sess, err := c.openScene(ctx, path)
	if err != nil {
		return err
	}
	snap := snapshot.Take(sess.Server)

	if asJSON {
		return snapshot.WriteJSON(os.Stdout, snap)
	}

	fmt.Println(layoutTable(snap))
	if len(snap.Pending) > 0 {
		printWarning("%d surface(s) waiting for an output", len(snap.Pending))
	}
	if sess.Ignored > 0 {
		printInfo("%d surface(s) ignored: role cannot be tiled", sess.Ignored)
	}
	return nil
}

// layoutTable renders one row per tile, grouped by output.
func layoutTable(snap snapshot.Snapshot) string {
	var rows [][]string
	for _, o := range snap.Outputs {
		if len(o.Tiles) == 0 {
			rows = append(rows, []string{o.Name, "—", "—", o.Root})
			continue
		}
		for _, t := range o.Tiles {
			rows = append(rows, []string{o.Name, t.Title, t.Box.Box().String(), o.Root})
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Output", "Surface", "Box", "Root").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
