package headless

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/surface"
)

// Texture is a solid-colour client buffer with an optional label.
type Texture struct {
	Color  color.RGBA
	Label  string
	width  int
	height int
}

func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

// Renderer rasterises frames into an in-memory image using gg.
// One renderer is shared by every display, as with a GPU renderer.
type Renderer struct {
	dc    *gg.Context
	last  image.Image
	draws int
}

// NewRenderer creates an idle renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Begin starts a frame of width x height pixels.
func (r *Renderer) Begin(width, height int) error {
	if r.dc != nil {
		return fmt.Errorf("headless: frame already in progress")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("headless: invalid render target %dx%d", width, height)
	}
	r.dc = gg.NewContext(width, height)
	r.draws = 0
	return nil
}

func (r *Renderer) Clear(c color.RGBA) {
	r.dc.SetColor(c)
	r.dc.Clear()
}

// DrawTexture fills dst with the texture colour, outlines it and centres
// the texture label inside.
func (r *Renderer) DrawTexture(tex surface.Texture, dst geom.Box) {
	t, ok := tex.(*Texture)
	if !ok {
		return
	}
	x, y := float64(dst.X), float64(dst.Y)
	w, h := float64(dst.Width), float64(dst.Height)

	r.dc.SetColor(t.Color)
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.Fill()

	r.dc.SetRGBA(0, 0, 0, 0.35)
	r.dc.SetLineWidth(2)
	r.dc.DrawRectangle(x+1, y+1, w-2, h-2)
	r.dc.Stroke()

	if t.Label != "" {
		r.dc.SetRGB(1, 1, 1)
		r.dc.DrawStringAnchored(t.Label, x+w/2, y+h/2, 0.5, 0.5)
	}
	r.draws++
}

// End finishes the frame; the result is available from Image.
func (r *Renderer) End() {
	if r.dc == nil {
		return
	}
	r.last = r.dc.Image()
	r.dc = nil
}

// Image returns the most recently finished frame, or nil.
func (r *Renderer) Image() image.Image { return r.last }

// Draws returns the number of textures drawn in the current or last frame.
func (r *Renderer) Draws() int { return r.draws }
