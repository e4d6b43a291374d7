package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bitter/pkg/compositor"
	"github.com/matzehuels/bitter/pkg/partition"
	"github.com/matzehuels/bitter/pkg/surface"
	"github.com/matzehuels/bitter/pkg/treeviz"
)

// treeCommand creates the tree command for exporting partition trees.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		outPath    string
		outputName string
		boxes      bool
	)

	cmd := &cobra.Command{
		Use:   "tree [scene.toml]",
		Short: "Export an output's partition tree as DOT or SVG",
		Long: `Export an output's partition tree as DOT or SVG.

Without --output the DOT source is written to stdout. An output path ending
in .svg is laid out with an embedded Graphviz; any other extension receives
the DOT source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), args[0], outputName, outPath, boxes)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file, .dot or .svg (default: stdout)")
	cmd.Flags().StringVar(&outputName, "display", "", "output whose tree to export (default: focused output)")
	cmd.Flags().BoolVar(&boxes, "boxes", true, "include computed boxes in member labels")

	return cmd
}

// runTree applies the scene and exports one output's tree.
func (c *CLI) runTree(ctx context.Context, path, outputName, outPath string, boxes bool) error {
	sess, err := c.openScene(ctx, path)
	if err != nil {
		return err
	}
	dot, err := treeDOT(sess.Server, outputName, boxes)
	if err != nil {
		return err
	}

	if outPath == "" {
		fmt.Print(dot)
		return nil
	}

	data := []byte(dot)
	if strings.EqualFold(filepath.Ext(outPath), ".svg") {
		spinner := newSpinnerWithContext(ctx, "Laying out tree...")
		spinner.Start()
		data, err = treeviz.RenderSVG(ctx, dot)
		if err != nil {
			spinner.StopWithError("Layout failed")
			return fmt.Errorf("render tree: %w", err)
		}
		spinner.Stop()
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outPath, err)
	}
	printSuccess("Tree exported")
	printFile(outPath)
	return nil
}

// treeDOT returns the DOT source of the named output's tree, or of the
// focused output when name is empty.
func treeDOT(srv *compositor.Server, name string, boxes bool) (string, error) {
	out := srv.FocusedOutput()
	if name != "" {
		o, ok := srv.Output(name)
		if !ok {
			return "", fmt.Errorf("no output named %q", name)
		}
		out = o
	}
	if out == nil {
		return "", fmt.Errorf("scene has no outputs")
	}

	opts := treeviz.Options{Label: surfaceTitle}
	if boxes {
		opts.Box = out.Box()
	}
	return treeviz.ToDOT(out.Root(), opts), nil
}

func surfaceTitle(m partition.Member) string {
	if s, ok := m.(surface.Surface); ok && s.Title() != "" {
		return s.Title()
	}
	return "untitled"
}
