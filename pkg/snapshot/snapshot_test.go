package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bitter/pkg/compositor"
	"github.com/matzehuels/bitter/pkg/headless"
	"github.com/matzehuels/bitter/pkg/surface"
)

func testServer(t *testing.T) *compositor.Server {
	t.Helper()
	b := headless.NewBackend()
	srv := compositor.New(compositor.Options{Renderer: b.Renderer(), Logger: log.New(io.Discard)})
	ctx := context.Background()

	srv.NewOutput(ctx, b.NewDisplay("DP-1", 1000, 800, 1))
	for _, title := range []string{"a", "b<&>"} {
		x := headless.NewSurface(headless.SurfaceOptions{Title: title, Role: surface.RoleToplevel})
		if _, err := srv.NewSurface(ctx, x); err != nil {
			t.Fatal(err)
		}
	}
	srv.NewOutput(ctx, b.NewDisplay("DP-2", 500, 400, 1))
	return srv
}

func TestTake(t *testing.T) {
	snap := Take(testServer(t))

	if snap.Focused != "DP-2" {
		t.Errorf("Focused = %q", snap.Focused)
	}
	if snap.Extents != (Rect{Width: 1500, Height: 800}) {
		t.Errorf("Extents = %+v", snap.Extents)
	}
	if len(snap.Outputs) != 2 {
		t.Fatalf("outputs = %d", len(snap.Outputs))
	}

	dp1 := snap.Outputs[0]
	if dp1.Root != "terminal-vertical" || dp1.State != "idle" {
		t.Errorf("DP-1 = %+v", dp1)
	}
	if len(dp1.Tiles) != 2 || dp1.Tiles[0].Title != "b<&>" || dp1.Tiles[1].Title != "a" {
		t.Fatalf("tiles = %+v", dp1.Tiles)
	}
	if dp1.Tiles[1].Box != (Rect{Y: 400, Width: 1000, Height: 400}) {
		t.Errorf("tile box = %+v", dp1.Tiles[1].Box)
	}
	if dp1.Tiles[0].Kind != "xdg-toplevel" || dp1.Tiles[0].ID == "" {
		t.Errorf("tile = %+v", dp1.Tiles[0])
	}
	if len(snap.Outputs[1].Tiles) != 0 || snap.Outputs[1].Box.X != 1000 {
		t.Errorf("DP-2 = %+v", snap.Outputs[1])
	}

	if o, ok := TakeOutput(testServer(t), "DP-1"); !ok || len(o.Tiles) != 2 {
		t.Error("TakeOutput should find DP-1")
	}
	if _, ok := TakeOutput(testServer(t), "nope"); ok {
		t.Error("unknown output should not be found")
	}
}

func TestTakePending(t *testing.T) {
	srv := compositor.New(compositor.Options{Logger: log.New(io.Discard)})
	x := headless.NewSurface(headless.SurfaceOptions{Title: "early", Role: surface.RoleToplevel})
	if _, err := srv.NewSurface(context.Background(), x); err != nil {
		t.Fatal(err)
	}
	snap := Take(srv)
	if len(snap.Outputs) != 0 || len(snap.Pending) != 1 || snap.Pending[0].Title != "early" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Take(testServer(t))); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Outputs) != 2 || decoded.Outputs[0].Tiles[0].Box.Width != 1000 {
		t.Errorf("decoded = %+v", decoded)
	}
	if !strings.Contains(buf.String(), `"width": 1000`) {
		t.Error("boxes should use lower-case keys")
	}
}

func TestRenderSVG(t *testing.T) {
	snap := Take(testServer(t))
	svg := string(RenderSVG(snap, WithBackground(color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff})))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1500 800"`) {
		t.Errorf("unexpected header: %.80s", svg)
	}
	if got := strings.Count(svg, `class="tile"`); got != 2 {
		t.Errorf("tile rects = %d", got)
	}
	if got := strings.Count(svg, `fill="#112233"`); got != 2 {
		t.Errorf("output rects = %d", got)
	}
	if !strings.Contains(svg, "b&lt;&amp;&gt;") {
		t.Error("titles should be escaped")
	}

	bare := string(RenderSVG(snap, WithoutLabels()))
	if strings.Contains(bare, "<text") {
		t.Error("WithoutLabels should omit text")
	}
}

func TestRectBox(t *testing.T) {
	r := Rect{X: 1, Y: 2, Width: 3, Height: 4}
	if b := r.Box(); b.X != 1 || b.Y != 2 || b.Width != 3 || b.Height != 4 {
		t.Errorf("Box() = %v", b)
	}
}
