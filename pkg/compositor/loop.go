package compositor

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/bitter/pkg/errors"
	"github.com/matzehuels/bitter/pkg/output"
	"github.com/matzehuels/bitter/pkg/surface"
)

// ErrLoopStopped is returned by Post and Do once Run has returned.
var ErrLoopStopped = stderrors.New("compositor loop stopped")

// Event is a typed message applied to the Server by the Loop.
type Event interface {
	Apply(ctx context.Context, s *Server) error
}

// NewOutput announces a new display.
type NewOutput struct {
	Display output.Display
}

func (e NewOutput) Apply(ctx context.Context, s *Server) error {
	s.NewOutput(ctx, e.Display)
	return nil
}

// OutputDestroyed announces that a display went away.
type OutputDestroyed struct {
	Name string
}

func (e OutputDestroyed) Apply(ctx context.Context, s *Server) error {
	return s.DestroyOutput(ctx, e.Name)
}

// NewSurface announces a new xdg-shell surface. An unsupported role is not
// an error at the loop level; the surface is simply not tiled.
type NewSurface struct {
	Surface surface.XDGSurface
}

func (e NewSurface) Apply(ctx context.Context, s *Server) error {
	if _, err := s.NewSurface(ctx, e.Surface); err != nil && !errors.Is(err, errors.ErrCodeUnsupportedRole) {
		return err
	}
	return nil
}

// SurfaceDestroyed announces the teardown of a tracked surface.
type SurfaceDestroyed struct {
	ID string
}

func (e SurfaceDestroyed) Apply(ctx context.Context, s *Server) error {
	return s.DestroySurface(ctx, e.ID)
}

// FrameReady is the frame clock firing for one output.
type FrameReady struct {
	Output string
	When   time.Time
}

func (e FrameReady) Apply(ctx context.Context, s *Server) error {
	out, ok := s.Output(e.Output)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "output %q", e.Output)
	}
	if !out.RequestFrame() {
		return nil
	}
	_, err := s.Render(ctx, out, e.When)
	return err
}

// LayoutChanged announces a mode or scale change on any display.
type LayoutChanged struct{}

func (LayoutChanged) Apply(_ context.Context, s *Server) error {
	s.RefreshLayout()
	return nil
}

type query struct {
	fn   func(*Server) error
	done chan error
}

func (q query) Apply(_ context.Context, s *Server) error {
	q.done <- q.fn(s)
	return nil
}

// Loop serialises every Server mutation onto the goroutine running Run.
type Loop struct {
	srv     *Server
	events  chan Event
	stopped chan struct{}
}

// NewLoop creates a loop with room for buffer queued events.
func NewLoop(srv *Server, buffer int) *Loop {
	return &Loop{
		srv:     srv,
		events:  make(chan Event, buffer),
		stopped: make(chan struct{}),
	}
}

// Run applies events until ctx is cancelled. Event errors are logged, never
// fatal. It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			if err := ev.Apply(ctx, l.srv); err != nil {
				l.srv.logger.Warn("event failed", "event", eventName(ev), "err", err)
			}
		}
	}
}

// Post queues ev. It blocks while the queue is full.
func (l *Loop) Post(ctx context.Context, ev Event) error {
	select {
	case l.events <- ev:
		return nil
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop goroutine and waits for its result. It is the only
// safe way for other goroutines to read Server state.
func (l *Loop) Do(ctx context.Context, fn func(*Server) error) error {
	q := query{fn: fn, done: make(chan error, 1)}
	if err := l.Post(ctx, q); err != nil {
		return err
	}
	select {
	case err := <-q.done:
		return err
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func eventName(ev Event) string {
	switch ev.(type) {
	case NewOutput:
		return "new-output"
	case OutputDestroyed:
		return "output-destroyed"
	case NewSurface:
		return "new-surface"
	case SurfaceDestroyed:
		return "surface-destroyed"
	case FrameReady:
		return "frame-ready"
	case LayoutChanged:
		return "layout-changed"
	case query:
		return "query"
	}
	return "unknown"
}
