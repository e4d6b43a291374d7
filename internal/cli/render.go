package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bitter/pkg/headless"
	"github.com/matzehuels/bitter/pkg/output"
	"github.com/matzehuels/bitter/pkg/scene"
	"github.com/matzehuels/bitter/pkg/snapshot"
)

const (
	formatPNG = "png" // raster frame of one output
	formatSVG = "svg" // wireframe of every output
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string // output file path; the extension selects the format
	outputName string // output to rasterise (PNG only); first output when empty
	frames     int    // frames to render before writing
	labels     bool   // draw titles in the SVG wireframe
}

// renderCommand creates the render command for drawing scene frames.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{frames: 1, labels: true}

	cmd := &cobra.Command{
		Use:   "render [scene.toml]",
		Short: "Render a scene to PNG or SVG",
		Long: `Render a scene to PNG or SVG.

PNG output runs the full render pass on a headless output: tiles are
configured, client buffers are drawn with their decoration offsets applied and
the committed frame is written. SVG output draws a wireframe of every output
and tile from the computed layout.

Use --frames to render more than one frame, for example to let clients that
were not ready on the first frame commit their buffers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, .png or .svg (default: <scene>.png)")
	cmd.Flags().StringVar(&opts.outputName, "display", "", "output to rasterise for PNG (default: first output)")
	cmd.Flags().IntVarP(&opts.frames, "frames", "n", opts.frames, "frames to render before writing")
	cmd.Flags().BoolVar(&opts.labels, "labels", opts.labels, "draw surface titles in SVG output")

	return cmd
}

// runRender applies the scene, renders the requested frames and writes the
// result.
func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	outPath := opts.output
	if outPath == "" {
		outPath = strings.TrimSuffix(path, filepath.Ext(path)) + "." + formatPNG
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(outPath)), ".")
	if format != formatPNG && format != formatSVG {
		return fmt.Errorf("unsupported output format %q: use .png or .svg", format)
	}
	if opts.frames < 1 {
		return fmt.Errorf("--frames must be at least 1")
	}

	sess, err := c.openScene(ctx, path)
	if err != nil {
		return err
	}
	if len(sess.Server.Outputs()) == 0 {
		return fmt.Errorf("scene %s has no outputs", path)
	}

	prog := newProgress(c.Logger)
	totals, err := renderFrames(ctx, sess, opts.frames)
	if err != nil {
		printWarning("%v", err)
	}
	prog.done(fmt.Sprintf("Rendered %d frame(s) on %d output(s)", opts.frames, len(sess.Server.Outputs())))

	switch format {
	case formatPNG:
		d, err := pickDisplay(sess, opts.outputName)
		if err != nil {
			return err
		}
		if err := writePNG(d, outPath); err != nil {
			return err
		}
	case formatSVG:
		var svgOpts []snapshot.SVGOption
		svgOpts = append(svgOpts, snapshot.WithBackground(sess.Server.Background()))
		if !opts.labels {
			svgOpts = append(svgOpts, snapshot.WithoutLabels())
		}
		svg := snapshot.RenderSVG(snapshot.Take(sess.Server), svgOpts...)
		if err := os.WriteFile(outPath, svg, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", outPath, err)
		}
	}

	printSuccess("Render complete")
	printFile(outPath)
	printFrameStats(totals.Tiles, totals.Drawn, totals.Skipped)
	printNewline()
	printNextStep("Inspect the tree", "bitter tree "+path)
	return nil
}

// renderFrames renders n frames on every output and returns the stats of
// the last one, summed over outputs. Dropped frames are reported joined.
func renderFrames(ctx context.Context, sess *scene.Session, n int) (output.Stats, error) {
	var totals output.Stats
	var errs []error
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return totals, err
		}
		stats, err := sess.Frame(ctx, time.Now())
		if err != nil {
			errs = append(errs, err)
		}
		totals = output.Stats{}
		for _, st := range stats {
			totals.Tiles += st.Tiles
			totals.Drawn += st.Drawn
			totals.Skipped += st.Skipped
			totals.Configured += st.Configured
		}
	}
	return totals, stderrors.Join(errs...)
}

// pickDisplay returns the named display, or the first output's display.
func pickDisplay(sess *scene.Session, name string) (*headless.Display, error) {
	if name == "" {
		name = sess.Server.Outputs()[0].Name()
	}
	d, ok := sess.Display(name)
	if !ok {
		return nil, fmt.Errorf("no output named %q", name)
	}
	return d, nil
}

func writePNG(d *headless.Display, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := d.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
