// Package scene describes scripted compositor sessions in TOML.
//
// A scene lists virtual outputs and the client surfaces announced on them:
//
//	root = "vertical"
//
//	[[output]]
//	name = "DP-1"
//	width = 1920
//	height = 1080
//
//	[[surface]]
//	title = "editor"
//	color = "#cc6633"
//	output = "DP-1"
//
//	[[surface.child]]
//	x = 12
//	y = 40
//	width = 200
//	height = 120
//	color = "#ffffff"
//
// Outputs are created in file order. A surface naming an output is announced
// right after that output appears, so it lands in that output's root; other
// surfaces are announced last, into whichever output was created last.
package scene

import (
	"context"
	stderrors "errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/bitter/pkg/compositor"
	"github.com/matzehuels/bitter/pkg/config"
	"github.com/matzehuels/bitter/pkg/errors"
	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/headless"
	"github.com/matzehuels/bitter/pkg/output"
	"github.com/matzehuels/bitter/pkg/partition"
	"github.com/matzehuels/bitter/pkg/surface"
)

// Scene is a parsed scene file.
type Scene struct {
	Root       string    `toml:"root"`
	Background string    `toml:"background"`
	Outputs    []Output  `toml:"output"`
	Surfaces   []Surface `toml:"surface"`
}

// Output is one virtual display.
type Output struct {
	Name   string  `toml:"name"`
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Scale  float64 `toml:"scale"`
}

// Surface is one scripted client.
type Surface struct {
	Title    string  `toml:"title"`
	Role     string  `toml:"role"`
	Color    string  `toml:"color"`
	Inset    int     `toml:"inset"`
	Unready  bool    `toml:"unready"`
	Output   string  `toml:"output"`
	Children []Child `toml:"child"`
}

// Child is a sub-surface drawn at an offset from its parent.
type Child struct {
	X      int    `toml:"x"`
	Y      int    `toml:"y"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Color  string `toml:"color"`
}

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a scene.
func Parse(data []byte) (*Scene, error) {
	var sc Scene
	md, err := toml.Decode(string(data), &sc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode scene")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidScene, "unknown scene key %q", undecoded[0].String())
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks names, sizes, colours and output references.
func (sc *Scene) Validate() error {
	if _, err := partition.ParseOrientation(sc.Root); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "root")
	}
	if sc.Background != "" {
		if _, err := config.ParseColor(sc.Background); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "background")
		}
	}

	names := make(map[string]bool, len(sc.Outputs))
	for i, o := range sc.Outputs {
		if err := errors.ValidateName("output", o.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "output %d", i)
		}
		if names[o.Name] {
			return errors.New(errors.ErrCodeInvalidScene, "duplicate output %q", o.Name)
		}
		names[o.Name] = true
		if err := errors.ValidateDimensions("output", o.Width, o.Height); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "output %q", o.Name)
		}
		if o.Scale < 0 {
			return errors.New(errors.ErrCodeInvalidScene, "output %q: negative scale", o.Name)
		}
	}

	for i, s := range sc.Surfaces {
		if _, err := surface.ParseRole(s.Role); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "surface %d", i)
		}
		if s.Color != "" {
			if _, err := config.ParseColor(s.Color); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "surface %d", i)
			}
		}
		if s.Inset < 0 {
			return errors.New(errors.ErrCodeInvalidScene, "surface %d: negative inset", i)
		}
		if s.Output != "" && !names[s.Output] {
			return errors.New(errors.ErrCodeInvalidScene, "surface %d: unknown output %q", i, s.Output)
		}
		for j, c := range s.Children {
			if err := errors.ValidateDimensions("child", c.Width, c.Height); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "surface %d child %d", i, j)
			}
			if c.Color != "" {
				if _, err := config.ParseColor(c.Color); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidScene, err, "surface %d child %d", i, j)
				}
			}
		}
	}
	return nil
}

// RootOrientation returns the orientation of each output's root terminal.
func (sc *Scene) RootOrientation() partition.Orientation {
	o, _ := partition.ParseOrientation(sc.Root)
	return o
}

// BackgroundColor returns the scene's clear colour, or fallback when unset.
func (sc *Scene) BackgroundColor(fallback color.RGBA) color.RGBA {
	if c, err := config.ParseColor(sc.Background); err == nil {
		return c
	}
	return fallback
}

// Options builds compositor options for the scene on backend.
func (sc *Scene) Options(backend *headless.Backend, fallback color.RGBA) compositor.Options {
	orient := sc.RootOrientation()
	return compositor.Options{
		Renderer:   backend.Renderer(),
		Background: sc.BackgroundColor(fallback),
		NewRoot:    func() *partition.Terminal { return partition.NewTerminal(orient) },
	}
}

// Session is a scene applied to a server.
type Session struct {
	Server   *compositor.Server
	Backend  *headless.Backend
	Clients  []*headless.Surface
	Surfaces []surface.Surface
	Ignored  int
}

// Apply creates the scene's displays on backend and announces its surfaces
// to srv. Surfaces the server refuses to tile are counted in Ignored.
func (sc *Scene) Apply(ctx context.Context, srv *compositor.Server, backend *headless.Backend) (*Session, error) {
	sess := &Session{Server: srv, Backend: backend}

	announce := func(s Surface) error {
		client := headless.NewSurface(s.options())
		surf, err := srv.NewSurface(ctx, client)
		if errors.Is(err, errors.ErrCodeUnsupportedRole) {
			sess.Ignored++
			return nil
		}
		if err != nil {
			return err
		}
		sess.Clients = append(sess.Clients, client)
		sess.Surfaces = append(sess.Surfaces, surf)
		return nil
	}

	for _, o := range sc.Outputs {
		srv.NewOutput(ctx, backend.NewDisplay(o.Name, o.Width, o.Height, o.Scale))
		for _, s := range sc.Surfaces {
			if s.Output == o.Name {
				if err := announce(s); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, s := range sc.Surfaces {
		if s.Output == "" {
			if err := announce(s); err != nil {
				return nil, err
			}
		}
	}
	return sess, nil
}

func (s Surface) options() headless.SurfaceOptions {
	role, _ := surface.ParseRole(s.Role)
	opts := headless.SurfaceOptions{
		Title:   s.Title,
		Role:    role,
		Color:   colorOr(s.Color, color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}),
		Inset:   s.Inset,
		Unready: s.Unready,
	}
	for _, c := range s.Children {
		opts.Children = append(opts.Children, headless.Child{
			Offset: geom.Point{X: c.X, Y: c.Y},
			Width:  c.Width,
			Height: c.Height,
			Color:  colorOr(c.Color, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
		})
	}
	return opts
}

func colorOr(s string, fallback color.RGBA) color.RGBA {
	if c, err := config.ParseColor(s); err == nil {
		return c
	}
	return fallback
}

// Frame renders one frame on every output. A failed output does not stop
// the others; all failures are returned joined.
func (s *Session) Frame(ctx context.Context, when time.Time) (map[string]output.Stats, error) {
	stats := make(map[string]output.Stats)
	var errs []error
	for _, out := range s.Server.Outputs() {
		st, err := s.Server.Render(ctx, out, when)
		stats[out.Name()] = st
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", out.Name(), err))
		}
	}
	return stats, stderrors.Join(errs...)
}

// Display returns the headless display backing the named output.
func (s *Session) Display(name string) (*headless.Display, bool) {
	return s.Backend.Display(name)
}
