package output

import (
	"fmt"
	"image/color"

	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/partition"
	"github.com/matzehuels/bitter/pkg/surface"
)

// Display is the physical display handle provided by the backend.
type Display interface {
	Name() string
	// EffectiveResolution is the mode size divided by the output scale.
	EffectiveResolution() (width, height int)
	// AttachRender makes the display's next buffer the current render target.
	AttachRender() error
	// Commit presents the rendered buffer.
	Commit() error
}

// Renderer issues draw operations into the currently attached target.
type Renderer interface {
	Begin(width, height int) error
	Clear(c color.RGBA)
	DrawTexture(tex surface.Texture, dst geom.Box)
	End()
}

// Layout answers where a display sits in the global layout.
type Layout interface {
	Box(d Display) (geom.Box, bool)
}

// State is the render pass state of an output.
type State uint8

const (
	Idle State = iota
	FrameRequested
	Rendering
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FrameRequested:
		return "frame-requested"
	case Rendering:
		return "rendering"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// DefaultBackground is the clear colour used when none is configured.
var DefaultBackground = color.RGBA{R: 0x00, G: 0x80, B: 0x80, A: 0xff}

// Output is one physical display with its own partition tree.
type Output struct {
	display Display
	root    partition.Node
	box     geom.Box
	state   State
	dirty   bool
	frames  uint64
}

// New creates an output whose root is a fresh, empty vertical terminal.
func New(d Display, box geom.Box) *Output {
	return NewWithRoot(d, box, partition.New())
}

// NewWithRoot creates an output around an existing tree.
func NewWithRoot(d Display, box geom.Box, root partition.Node) *Output {
	return &Output{display: d, root: root, box: box, dirty: true}
}

func (o *Output) Name() string         { return o.display.Name() }
func (o *Output) Display() Display     { return o.display }
func (o *Output) Root() partition.Node { return o.root }
func (o *Output) State() State         { return o.state }
func (o *Output) Frames() uint64       { return o.frames }
func (o *Output) NeedsConfigure() bool { return o.dirty }

// Box returns the output's absolute layout box. Until a layout box has been
// assigned, the box is the display's effective resolution at the origin.
func (o *Output) Box() geom.Box {
	if o.box.Empty() {
		w, h := o.display.EffectiveResolution()
		return geom.Box{Width: w, Height: h}
	}
	return o.box
}

// Reconfigure records a new layout box. Nothing is recomputed until the
// next frame.
func (o *Output) Reconfigure(box geom.Box) {
	o.box = box
	o.dirty = true
}

// MarkDirty schedules a configure pass for the next frame, typically after
// the tree's membership changed.
func (o *Output) MarkDirty() { o.dirty = true }

// RequestFrame moves an idle output to frame-requested. It reports false
// when a frame is already being rendered.
func (o *Output) RequestFrame() bool {
	if o.state == Rendering {
		return false
	}
	o.state = FrameRequested
	return true
}

// Placements computes the current box of every tiled surface.
func (o *Output) Placements() []partition.Placement {
	return partition.Layout(o.root, o.Box())
}

// Release detaches every surface from the output's tree. The output must
// not be rendered afterwards.
func (o *Output) Release() {
	partition.Release(o.root)
}
