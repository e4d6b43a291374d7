// Package surface defines the displayable-surface abstraction the tiling
// tree manipulates, and the protocol variants that implement it.
//
// A [Surface] is one tileable window. The tree and the render pass only see
// its capability set (resize, mark tiled, enumerate sub-surfaces); each
// protocol variant supplies its own implementation, so new variants such
// as popups or layer surfaces need no changes to either.
package surface

import (
	"fmt"
	"iter"
	"time"

	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/partition"
)

// Kind tags the protocol variant behind a Surface.
type Kind uint8

const (
	// KindXDGToplevel is an xdg-shell toplevel window.
	KindXDGToplevel Kind = iota
)

func (k Kind) String() string {
	switch k {
	case KindXDGToplevel:
		return "xdg-toplevel"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Role is the protocol role a client has assigned to a shell surface.
type Role uint8

const (
	RoleNone Role = iota
	RoleToplevel
	RolePopup
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleToplevel:
		return "toplevel"
	case RolePopup:
		return "popup"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// ParseRole maps a role name to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "toplevel", "":
		return RoleToplevel, nil
	case "popup":
		return RolePopup, nil
	case "none":
		return RoleNone, nil
	}
	return RoleNone, fmt.Errorf("unknown surface role %q", s)
}

// Texture is a renderer-owned image uploaded from a client buffer.
type Texture interface {
	Width() int
	Height() int
}

// Buffer is one drawable protocol surface: a toplevel's main surface or
// one of its sub-surfaces.
type Buffer interface {
	// Texture returns the uploaded texture, or nil if none is ready yet.
	Texture() Texture
	// Size returns the buffer's current size in layout units.
	Size() (width, height int)
	// FrameDone tells the client its content was presented at when.
	FrameDone(when time.Time)
}

// Surface is a tileable window.
type Surface interface {
	partition.Member

	// ID is a stable identifier, unique for the life of the process.
	ID() string
	Kind() Kind
	// Title is a human-readable label for logs and tooling.
	Title() string

	// SetSize asks the client to resize to exactly width x height and
	// returns the configure serial. The client may not honour it before
	// the next frame.
	SetSize(width, height int) uint32
	// SetTiled tells the client it is tiled so it can drop shadows and
	// rounded decorations. Idempotent.
	SetTiled(tiled bool) uint32
	// SubSurfaces yields every drawable buffer with its offset relative to
	// the surface origin, in protocol stacking order. The sequence is
	// finite and should be consumed once per frame.
	SubSurfaces() iter.Seq2[Buffer, geom.Point]
	// Geometry is the client-declared content box within its buffers.
	// A negative origin means the content is inset by decorations.
	Geometry() geom.Box
}
