package headless

import (
	"errors"
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"
)

// Display is a virtual monitor whose committed frames are kept in memory.
type Display struct {
	name          string
	width, height int
	scale         float64
	renderer      *Renderer

	frame   image.Image
	commits int

	// FailAttach and FailCommit, when set, are returned by the next
	// AttachRender or Commit to simulate a lost render target.
	FailAttach error
	FailCommit error
}

// NewDisplay creates a display bound to r. A scale <= 0 means 1.
func NewDisplay(r *Renderer, name string, width, height int, scale float64) *Display {
	if scale <= 0 {
		scale = 1
	}
	return &Display{name: name, width: width, height: height, scale: scale, renderer: r}
}

func (d *Display) Name() string { return d.name }

// Mode returns the physical mode size in pixels.
func (d *Display) Mode() (width, height int) { return d.width, d.height }

func (d *Display) Scale() float64 { return d.scale }

// EffectiveResolution returns the mode divided by the scale, rounded down.
func (d *Display) EffectiveResolution() (width, height int) {
	return int(math.Floor(float64(d.width) / d.scale)), int(math.Floor(float64(d.height) / d.scale))
}

// SetMode changes the mode. The layout must be refreshed afterwards.
func (d *Display) SetMode(width, height int) {
	d.width, d.height = width, height
}

// SetScale changes the output scale. The layout must be refreshed afterwards.
func (d *Display) SetScale(scale float64) {
	if scale > 0 {
		d.scale = scale
	}
}

func (d *Display) AttachRender() error {
	if err := d.FailAttach; err != nil {
		d.FailAttach = nil
		return err
	}
	return nil
}

// Commit keeps the renderer's finished frame as this display's content.
func (d *Display) Commit() error {
	if err := d.FailCommit; err != nil {
		d.FailCommit = nil
		return err
	}
	d.frame = d.renderer.Image()
	d.commits++
	return nil
}

// Frame returns the last committed frame, or nil.
func (d *Display) Frame() image.Image { return d.frame }

// Commits returns how many frames were committed.
func (d *Display) Commits() int { return d.commits }

// EncodePNG writes the last committed frame as PNG.
func (d *Display) EncodePNG(w io.Writer) error {
	if d.frame == nil {
		return errors.New("headless: no frame committed")
	}
	return gg.NewContextForImage(d.frame).EncodePNG(w)
}
