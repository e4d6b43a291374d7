package output

import (
	"context"
	"image/color"
	"time"

	"github.com/matzehuels/bitter/pkg/errors"
	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/observability"
	"github.com/matzehuels/bitter/pkg/partition"
	"github.com/matzehuels/bitter/pkg/surface"
)

// Frame carries the per-frame inputs of a render pass.
type Frame struct {
	Renderer   Renderer
	Layout     Layout
	Background color.RGBA
	When       time.Time
}

// Stats summarises one render pass.
type Stats struct {
	Tiles      int // tiled surfaces visited
	Drawn      int // buffers drawn
	Skipped    int // buffers without a ready texture
	Configured int // SetSize requests sent
}

// Render draws one frame. A frame that fails to attach, begin or commit its
// render target returns an ErrCodeRenderTarget error and leaves the output
// idle; calling Render while a frame is in progress returns ErrCodeFrameBusy.
func (o *Output) Render(ctx context.Context, f Frame) (Stats, error) {
	var stats Stats
	if o.state == Rendering {
		return stats, errors.New(errors.ErrCodeFrameBusy, "output %s is already rendering", o.Name())
	}
	o.state = Rendering
	defer func() { o.state = Idle }()

	hooks := observability.Frames()
	hooks.OnFrameStart(ctx, o.Name())
	start := time.Now()

	err := o.render(f, &stats)
	if err == nil {
		o.frames++
	}
	hooks.OnFrameComplete(ctx, o.Name(), stats.Drawn, stats.Skipped, time.Since(start), err)
	return stats, err
}

func (o *Output) render(f Frame, stats *Stats) error {
	if err := o.display.AttachRender(); err != nil {
		return errors.Wrap(errors.ErrCodeRenderTarget, err, "attach render target for %s", o.Name())
	}
	width, height := o.display.EffectiveResolution()
	if err := f.Renderer.Begin(width, height); err != nil {
		return errors.Wrap(errors.ErrCodeRenderTarget, err, "begin render on %s", o.Name())
	}
	f.Renderer.Clear(f.Background)

	layoutBox := o.frameBox(f)
	configure := o.dirty
	o.dirty = false

	partition.Walk(o.root, layoutBox, func(m partition.Member, box geom.Box) {
		s, ok := m.(surface.Surface)
		if !ok {
			return
		}
		stats.Tiles++
		if configure {
			s.SetSize(box.Width, box.Height)
			stats.Configured++
		}
		o.drawSurface(f, s, box, layoutBox.Origin(), stats)
	})

	f.Renderer.End()
	if err := o.display.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeRenderTarget, err, "commit %s", o.Name())
	}
	return nil
}

// frameBox returns the box the frame walks: the box last passed to
// Reconfigure, or the layout's box for an output that was never assigned one.
func (o *Output) frameBox(f Frame) geom.Box {
	if o.box.Empty() && f.Layout != nil {
		if b, ok := f.Layout.Box(o.display); ok {
			return b
		}
	}
	return o.Box()
}

// drawSurface draws every sub-surface of s inside its tile. Tile boxes are in
// layout coordinates; subtracting the output's layout origin makes them
// output-local. Clients that inset their content behind client-side
// decorations declare a negative geometry origin; the drawn origin is shifted
// back by that amount so the content, not the shadow, lines up with the tile.
func (o *Output) drawSurface(f Frame, s surface.Surface, tile geom.Box, origin geom.Point, stats *Stats) {
	geo := s.Geometry()
	base := tile.Origin().Sub(origin).Sub(geom.Point{X: min(0, geo.X), Y: min(0, geo.Y)})

	for buf, off := range s.SubSurfaces() {
		tex := buf.Texture()
		if tex == nil {
			stats.Skipped++
			continue
		}
		w, h := buf.Size()
		pos := base.Add(off)
		f.Renderer.DrawTexture(tex, geom.Box{X: pos.X, Y: pos.Y, Width: w, Height: h})
		buf.FrameDone(f.When)
		stats.Drawn++
	}
}
