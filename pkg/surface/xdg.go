package surface

import (
	"iter"

	"github.com/google/uuid"

	"github.com/matzehuels/bitter/pkg/errors"
	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/partition"
)

// XDGSurface is the protocol collaborator behind an xdg-shell surface.
// Implementations wrap the toolkit's surface handle.
type XDGSurface interface {
	Role() Role
	Title() string
	// SetSize sends a toplevel configure with the given size.
	SetSize(width, height int) uint32
	// SetTiled sends the tiled state on every edge.
	SetTiled(tiled bool) uint32
	Geometry() geom.Box
	// ForEachSurface calls fn for the main surface and every mapped
	// sub-surface and popup, with offsets relative to the surface origin.
	ForEachSurface(fn func(b Buffer, sx, sy int))
}

// XDG is the xdg-shell toplevel variant of Surface.
type XDG struct {
	id      string
	surface XDGSurface
	slot    partition.Slot
}

// NewXDG wraps an xdg-shell surface. Only toplevels can be tiled; any other
// role yields an ErrCodeUnsupportedRole error and the caller should leave
// the surface alone.
func NewXDG(s XDGSurface) (*XDG, error) {
	if role := s.Role(); role != RoleToplevel {
		return nil, errors.New(errors.ErrCodeUnsupportedRole, "xdg surface with role %s cannot be tiled", role)
	}
	return &XDG{id: uuid.NewString(), surface: s}, nil
}

func (x *XDG) ID() string            { return x.id }
func (x *XDG) Kind() Kind            { return KindXDGToplevel }
func (x *XDG) Title() string         { return x.surface.Title() }
func (x *XDG) Slot() *partition.Slot { return &x.slot }
func (x *XDG) Geometry() geom.Box    { return x.surface.Geometry() }

// Protocol returns the wrapped protocol surface.
func (x *XDG) Protocol() XDGSurface { return x.surface }

func (x *XDG) SetSize(width, height int) uint32 {
	return x.surface.SetSize(width, height)
}

func (x *XDG) SetTiled(tiled bool) uint32 {
	return x.surface.SetTiled(tiled)
}

// SubSurfaces adapts the toolkit's callback iteration to a sequence.
// Stopping early stops forwarding; the toolkit still finishes its own walk.
func (x *XDG) SubSurfaces() iter.Seq2[Buffer, geom.Point] {
	return func(yield func(Buffer, geom.Point) bool) {
		done := false
		x.surface.ForEachSurface(func(b Buffer, sx, sy int) {
			if done {
				return
			}
			if !yield(b, geom.Point{X: sx, Y: sy}) {
				done = true
			}
		})
	}
}

var _ Surface = (*XDG)(nil)
