package headless

import (
	"image/color"
	"time"

	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/surface"
)

// Child describes a sub-surface drawn on top of its parent.
type Child struct {
	Offset        geom.Point
	Width, Height int
	Color         color.RGBA
}

// SurfaceOptions configures a scripted client surface.
type SurfaceOptions struct {
	Title string
	Role  surface.Role
	Color color.RGBA
	// Inset is the width of client-side decorations around the content.
	// The surface declares a geometry origin of (-Inset, -Inset).
	Inset int
	// Unready surfaces never commit a buffer, so they have no texture.
	Unready  bool
	Children []Child
}

// Surface is a scripted xdg-shell client. It acknowledges every configure
// by committing a buffer of exactly the requested size.
type Surface struct {
	opts   SurfaceOptions
	serial uint32
	tiled  bool

	main     *Buffer
	children []*Buffer
	sizes    []geom.Box
}

// NewSurface creates a client surface. It has no buffer until its first
// configure.
func NewSurface(opts SurfaceOptions) *Surface {
	s := &Surface{opts: opts, main: &Buffer{}}
	for _, c := range opts.Children {
		b := &Buffer{offset: c.Offset, width: c.Width, height: c.Height}
		if !opts.Unready {
			b.tex = &Texture{Color: c.Color, width: c.Width, height: c.Height}
		}
		s.children = append(s.children, b)
	}
	return s
}

func (s *Surface) Role() surface.Role { return s.opts.Role }
func (s *Surface) Title() string      { return s.opts.Title }

func (s *Surface) Geometry() geom.Box {
	return geom.Box{X: -s.opts.Inset, Y: -s.opts.Inset, Width: s.main.width, Height: s.main.height}
}

// SetSize records the configure and commits a matching buffer.
func (s *Surface) SetSize(width, height int) uint32 {
	s.serial++
	s.sizes = append(s.sizes, geom.Box{Width: width, Height: height})
	s.main.width, s.main.height = width, height
	if !s.opts.Unready && width > 0 && height > 0 {
		s.main.tex = &Texture{Color: s.opts.Color, Label: s.opts.Title, width: width, height: height}
	}
	return s.serial
}

func (s *Surface) SetTiled(tiled bool) uint32 {
	s.serial++
	s.tiled = tiled
	return s.serial
}

// ForEachSurface yields the main buffer, then each child.
func (s *Surface) ForEachSurface(fn func(b surface.Buffer, sx, sy int)) {
	fn(s.main, 0, 0)
	for _, c := range s.children {
		fn(c, c.offset.X, c.offset.Y)
	}
}

// Color returns the fill colour of the main buffer.
func (s *Surface) Color() color.RGBA { return s.opts.Color }

// Tiled reports the last tiled state sent to the client.
func (s *Surface) Tiled() bool { return s.tiled }

// Configures returns every size requested so far.
func (s *Surface) Configures() []geom.Box {
	out := make([]geom.Box, len(s.sizes))
	copy(out, s.sizes)
	return out
}

// Buffer returns the main buffer.
func (s *Surface) Buffer() *Buffer { return s.main }

var _ surface.XDGSurface = (*Surface)(nil)

// Buffer is one committed client buffer.
type Buffer struct {
	tex           *Texture
	offset        geom.Point
	width, height int
	framesDone    int
	lastFrame     time.Time
}

// Texture returns nil until the client has committed content.
func (b *Buffer) Texture() surface.Texture {
	if b.tex == nil {
		return nil
	}
	return b.tex
}

func (b *Buffer) Size() (int, int) { return b.width, b.height }

func (b *Buffer) FrameDone(when time.Time) {
	b.framesDone++
	b.lastFrame = when
}

// FramesDone returns how many frame callbacks the buffer received.
func (b *Buffer) FramesDone() int { return b.framesDone }

// LastFrame returns the timestamp of the last frame callback.
func (b *Buffer) LastFrame() time.Time { return b.lastFrame }
