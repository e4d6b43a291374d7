// Package snapshot captures the tiling state of a compositor for export.
//
// A [Snapshot] is a plain value: it can be encoded as JSON with [WriteJSON]
// or drawn as a wireframe SVG with [RenderSVG]. All boxes are in layout
// coordinates.
package snapshot

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/bitter/pkg/compositor"
	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/surface"
)

// Snapshot is the tiling state of every output.
type Snapshot struct {
	Extents Rect     `json:"extents"`
	Focused string   `json:"focused,omitempty"`
	Outputs []Output `json:"outputs"`
	Pending []Tile   `json:"pending,omitempty"`
}

// Output is one output and its tiles, in traversal order.
type Output struct {
	Name   string `json:"name"`
	Box    Rect   `json:"box"`
	Root   string `json:"root"`
	State  string `json:"state"`
	Frames uint64 `json:"frames"`
	Tiles  []Tile `json:"tiles"`
}

// Tile is one tiled surface.
type Tile struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
	Box   Rect   `json:"box"`
}

// Rect is a JSON-friendly geom.Box.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func rect(b geom.Box) Rect {
	return Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// Box converts r back to a geom.Box.
func (r Rect) Box() geom.Box {
	return geom.Box{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Take captures srv. It must run on the goroutine that owns srv.
func Take(srv *compositor.Server) Snapshot {
	snap := Snapshot{
		Extents: rect(srv.Layout().Extents()),
		Outputs: []Output{},
	}
	if out := srv.FocusedOutput(); out != nil {
		snap.Focused = out.Name()
	}

	for _, o := range srv.Outputs() {
		so := Output{
			Name:   o.Name(),
			Box:    rect(o.Box()),
			Root:   o.Root().Kind().String(),
			State:  o.State().String(),
			Frames: o.Frames(),
			Tiles:  []Tile{},
		}
		for _, p := range o.Placements() {
			if s, ok := p.Member.(surface.Surface); ok {
				so.Tiles = append(so.Tiles, tile(s, p.Box))
			}
		}
		snap.Outputs = append(snap.Outputs, so)
	}

	for _, s := range srv.Pending() {
		snap.Pending = append(snap.Pending, tile(s, geom.Box{}))
	}
	return snap
}

// TakeOutput captures a single output of srv.
func TakeOutput(srv *compositor.Server, name string) (Output, bool) {
	for _, o := range Take(srv).Outputs {
		if o.Name == name {
			return o, true
		}
	}
	return Output{}, false
}

func tile(s surface.Surface, box geom.Box) Tile {
	return Tile{ID: s.ID(), Title: s.Title(), Kind: s.Kind().String(), Box: rect(box)}
}

// WriteJSON writes snap as indented JSON.
func WriteJSON(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
