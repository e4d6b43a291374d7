package compositor

import (
	"context"
	"image/color"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bitter/pkg/errors"
	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/observability"
	"github.com/matzehuels/bitter/pkg/output"
	"github.com/matzehuels/bitter/pkg/partition"
	"github.com/matzehuels/bitter/pkg/surface"
)

// Options configures a Server.
type Options struct {
	// Renderer draws every output's frames. Required for Render.
	Renderer output.Renderer
	// Layout places outputs; a fresh AutoLayout is used when nil.
	Layout *output.AutoLayout
	// Logger defaults to log.Default().
	Logger *log.Logger
	// Background is the clear colour; output.DefaultBackground when zero.
	Background color.RGBA
	// NewRoot builds the root node of each new output. partition.New is
	// used when nil.
	NewRoot func() *partition.Terminal
}

// Server is the orchestrator: it owns outputs and surfaces and tracks the
// focused node that receives new surfaces.
type Server struct {
	renderer   output.Renderer
	layout     *output.AutoLayout
	logger     *log.Logger
	background color.RGBA
	newRoot    func() *partition.Terminal

	outputs  []*output.Output
	surfaces map[string]surface.Surface
	order    []string
	pending  []surface.Surface

	focused    partition.Node
	focusedOut *output.Output
}

// New creates a server with no outputs.
func New(opts Options) *Server {
	s := &Server{
		renderer:   opts.Renderer,
		layout:     opts.Layout,
		logger:     opts.Logger,
		background: opts.Background,
		newRoot:    opts.NewRoot,
		surfaces:   make(map[string]surface.Surface),
	}
	if s.layout == nil {
		s.layout = output.NewAutoLayout()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.newRoot == nil {
		s.newRoot = partition.New
	}
	if s.background == (color.RGBA{}) {
		s.background = output.DefaultBackground
	}
	return s
}

// NewOutput adds a display to the layout, gives it a fresh root node and
// makes that root the focus target. Surfaces waiting for an output are
// tiled into it.
func (s *Server) NewOutput(ctx context.Context, d output.Display) *output.Output {
	box := s.layout.Add(d)
	out := output.NewWithRoot(d, box, s.newRoot())
	s.outputs = append(s.outputs, out)
	s.focus(out)
	s.logger.Info("output added", "output", d.Name(), "box", box)

	s.adoptPending(ctx)
	return out
}

// DestroyOutput releases the output's tree, detaching every surface tiled
// in it, and removes the display from the layout. Detached surfaces are
// tiled into the next focused output, if any remains.
func (s *Server) DestroyOutput(ctx context.Context, name string) error {
	idx := s.outputIndex(name)
	if idx < 0 {
		return errors.New(errors.ErrCodeNotFound, "output %q", name)
	}
	out := s.outputs[idx]

	orphans := s.tiledIn(out)
	out.Release()
	// Oldest first, so re-tiling restores the original order.
	for i := len(orphans) - 1; i >= 0; i-- {
		observability.Tree().OnSurfaceUntiled(ctx, orphans[i].ID())
		s.pending = append(s.pending, orphans[i])
	}

	s.outputs = append(s.outputs[:idx], s.outputs[idx+1:]...)
	s.layout.Remove(out.Display())
	for _, o := range s.outputs {
		if b, ok := s.layout.Box(o.Display()); ok {
			o.Reconfigure(b)
		}
	}

	if s.focusedOut == out {
		s.focused, s.focusedOut = nil, nil
		if n := len(s.outputs); n > 0 {
			s.focus(s.outputs[n-1])
		}
	}
	s.logger.Info("output removed", "output", name, "orphans", len(orphans))

	s.adoptPending(ctx)
	return nil
}

// NewSurface wraps a newly announced xdg-shell surface, marks it tiled and
// inserts it into the focused node. Surfaces that cannot be tiled return an
// UNSUPPORTED_ROLE error and are not tracked.
func (s *Server) NewSurface(ctx context.Context, x surface.XDGSurface) (surface.Surface, error) {
	surf, err := surface.NewXDG(x)
	if err != nil {
		observability.Tree().OnSurfaceIgnored(ctx, errors.UserMessage(err))
		s.logger.Debug("surface ignored", "title", x.Title(), "role", x.Role())
		return nil, err
	}

	s.surfaces[surf.ID()] = surf
	s.order = append(s.order, surf.ID())
	surf.SetTiled(true)
	s.InsertFocused(ctx, surf)
	return surf, nil
}

// InsertFocused tiles surf into the focused node and returns the terminal
// that now holds it. With no output yet, the surface waits and nil is
// returned.
func (s *Server) InsertFocused(ctx context.Context, surf surface.Surface) *partition.Terminal {
	if s.focused == nil {
		s.pending = append(s.pending, surf)
		s.logger.Debug("surface pending", "surface", surf.ID(), "title", surf.Title())
		return nil
	}

	term := partition.Insert(s.focused, surf)
	s.markDirty()
	observability.Tree().OnSurfaceTiled(ctx, s.focusedOut.Name(), surf.ID(), term.Kind().String())
	s.logger.Debug("surface tiled", "surface", surf.ID(), "title", surf.Title(),
		"output", s.focusedOut.Name(), "members", term.Len())
	return term
}

// DestroySurface removes the surface from its terminal and forgets it.
func (s *Server) DestroySurface(ctx context.Context, id string) error {
	surf, ok := s.surfaces[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "surface %q", id)
	}

	if partition.Remove(surf) {
		s.markDirty()
		observability.Tree().OnSurfaceUntiled(ctx, id)
	}
	s.pending = removeSurface(s.pending, surf)
	delete(s.surfaces, id)
	for i, cur := range s.order {
		if cur == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.logger.Debug("surface destroyed", "surface", id)
	return nil
}

// Render runs one frame on out. A dropped frame is logged and returned; it
// has no effect on other outputs.
func (s *Server) Render(ctx context.Context, out *output.Output, when time.Time) (output.Stats, error) {
	stats, err := out.Render(ctx, output.Frame{
		Renderer:   s.renderer,
		Layout:     s.layout,
		Background: s.background,
		When:       when,
	})
	if err != nil {
		if errors.Is(err, errors.ErrCodeFrameBusy) {
			s.logger.Debug("frame skipped", "output", out.Name(), "err", err)
		} else {
			s.logger.Error("frame dropped", "output", out.Name(), "err", err)
		}
	}
	return stats, err
}

// Reconfigure records a new layout box for out and moves its layout entry
// to match. Geometry is recomputed on the next frame.
func (s *Server) Reconfigure(out *output.Output, box geom.Box) {
	s.layout.Set(out.Display(), box)
	out.Reconfigure(box)
}

// RefreshLayout re-reads every display's resolution, reflows the layout and
// reconfigures every output.
func (s *Server) RefreshLayout() {
	s.layout.Refresh()
	for _, o := range s.outputs {
		if b, ok := s.layout.Box(o.Display()); ok {
			s.Reconfigure(o, b)
		}
	}
}

// Outputs returns the outputs in creation order.
func (s *Server) Outputs() []*output.Output {
	out := make([]*output.Output, len(s.outputs))
	copy(out, s.outputs)
	return out
}

// Output looks up an output by name.
func (s *Server) Output(name string) (*output.Output, bool) {
	if i := s.outputIndex(name); i >= 0 {
		return s.outputs[i], true
	}
	return nil, false
}

// Surface looks up a surface by ID.
func (s *Server) Surface(id string) (surface.Surface, bool) {
	surf, ok := s.surfaces[id]
	return surf, ok
}

// Surfaces returns every tracked surface in creation order.
func (s *Server) Surfaces() []surface.Surface {
	out := make([]surface.Surface, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.surfaces[id])
	}
	return out
}

// Pending returns surfaces that are waiting for an output.
func (s *Server) Pending() []surface.Surface {
	out := make([]surface.Surface, len(s.pending))
	copy(out, s.pending)
	return out
}

// Focused returns the node receiving new surfaces, or nil before the first
// output appears.
func (s *Server) Focused() partition.Node { return s.focused }

// FocusedOutput returns the output owning the focused node.
func (s *Server) FocusedOutput() *output.Output { return s.focusedOut }

// OutputOf returns the output whose tree tiles surf.
func (s *Server) OutputOf(surf surface.Surface) (*output.Output, bool) {
	owner := surf.Slot().Owner()
	if owner == nil {
		return nil, false
	}
	for _, o := range s.outputs {
		for _, t := range partition.Terminals(o.Root()) {
			if t == owner {
				return o, true
			}
		}
	}
	return nil, false
}

// Layout returns the output layout.
func (s *Server) Layout() *output.AutoLayout { return s.layout }

// Background returns the clear colour.
func (s *Server) Background() color.RGBA { return s.background }

// Close destroys every output, detaching all surfaces.
func (s *Server) Close(ctx context.Context) {
	for len(s.outputs) > 0 {
		_ = s.DestroyOutput(ctx, s.outputs[len(s.outputs)-1].Name())
	}
}

func (s *Server) focus(out *output.Output) {
	s.focused = out.Root()
	s.focusedOut = out
}

func (s *Server) adoptPending(ctx context.Context) {
	if s.focused == nil || len(s.pending) == 0 {
		return
	}
	waiting := s.pending
	s.pending = nil
	for _, surf := range waiting {
		s.InsertFocused(ctx, surf)
	}
}

// markDirty schedules a configure pass on every output, so each tiled
// surface is told its new size on the next frame.
func (s *Server) markDirty() {
	for _, o := range s.outputs {
		o.MarkDirty()
	}
}

func (s *Server) tiledIn(out *output.Output) []surface.Surface {
	var tiled []surface.Surface
	for _, p := range out.Placements() {
		if surf, ok := p.Member.(surface.Surface); ok {
			tiled = append(tiled, surf)
		}
	}
	return tiled
}

func (s *Server) outputIndex(name string) int {
	for i, o := range s.outputs {
		if o.Name() == name {
			return i
		}
	}
	return -1
}

func removeSurface(list []surface.Surface, surf surface.Surface) []surface.Surface {
	for i, cur := range list {
		if cur == surf {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
