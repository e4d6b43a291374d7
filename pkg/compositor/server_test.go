package compositor

import (
	"context"
	"image/color"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bitter/pkg/errors"
	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/headless"
	"github.com/matzehuels/bitter/pkg/observability"
	"github.com/matzehuels/bitter/pkg/partition"
	"github.com/matzehuels/bitter/pkg/surface"
)

var (
	red  = color.RGBA{R: 0xff, A: 0xff}
	blue = color.RGBA{B: 0xff, A: 0xff}
)

type treeRecorder struct {
	tiled   []string
	untiled []string
	ignored []string
}

func (r *treeRecorder) OnSurfaceTiled(_ context.Context, output, id, kind string) {
	r.tiled = append(r.tiled, output+"/"+kind)
}
func (r *treeRecorder) OnSurfaceUntiled(_ context.Context, id string) {
	r.untiled = append(r.untiled, id)
}
func (r *treeRecorder) OnSurfaceIgnored(_ context.Context, reason string) {
	r.ignored = append(r.ignored, reason)
}

func recordTree(t *testing.T) *treeRecorder {
	t.Helper()
	rec := &treeRecorder{}
	observability.SetTreeHooks(rec)
	t.Cleanup(observability.Reset)
	return rec
}

func newTestServer() (*Server, *headless.Backend) {
	b := headless.NewBackend()
	srv := New(Options{Renderer: b.Renderer(), Logger: log.New(io.Discard)})
	return srv, b
}

func toplevel(title string, c color.RGBA) *headless.Surface {
	return headless.NewSurface(headless.SurfaceOptions{Title: title, Role: surface.RoleToplevel, Color: c})
}

func headlessPopup() *headless.Surface {
	return headless.NewSurface(headless.SurfaceOptions{Title: "menu", Role: surface.RolePopup})
}

func mustSurface(t *testing.T, srv *Server, x surface.XDGSurface) surface.Surface {
	t.Helper()
	s, err := srv.NewSurface(context.Background(), x)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	return s
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func TestNewOutputBecomesFocus(t *testing.T) {
	srv, b := newTestServer()
	ctx := context.Background()

	if srv.Focused() != nil {
		t.Fatal("no focus expected before the first output")
	}
	first := srv.NewOutput(ctx, b.NewDisplay("DP-1", 1920, 1080, 1))
	if srv.Focused() != first.Root() || srv.FocusedOutput() != first {
		t.Error("first output root should be focused")
	}
	if first.Root().Kind() != partition.TerminalVertical {
		t.Errorf("root kind = %v", first.Root().Kind())
	}

	second := srv.NewOutput(ctx, b.NewDisplay("DP-2", 1280, 1024, 1))
	if srv.Focused() != second.Root() {
		t.Error("newest output root should be focused")
	}
	if got := second.Box(); got != (geom.Box{X: 1920, Width: 1280, Height: 1024}) {
		t.Errorf("second output box = %v", got)
	}
	if len(srv.Outputs()) != 2 {
		t.Errorf("Outputs() = %d", len(srv.Outputs()))
	}
}

func TestNewSurfaceTilesIntoFocus(t *testing.T) {
	rec := recordTree(t)
	srv, b := newTestServer()
	ctx := context.Background()
	d := b.NewDisplay("HDMI-A-1", 1920, 1080, 1)
	out := srv.NewOutput(ctx, d)

	xa, xb := toplevel("a", red), toplevel("b", blue)
	a := mustSurface(t, srv, xa)
	bs := mustSurface(t, srv, xb)

	if !xa.Tiled() || !xb.Tiled() {
		t.Error("surfaces should be marked tiled")
	}
	placements := out.Placements()
	if len(placements) != 2 {
		t.Fatalf("placements = %d", len(placements))
	}
	if placements[0].Member != bs || placements[0].Box != (geom.Box{Width: 1920, Height: 540}) {
		t.Errorf("first placement = %v", placements[0])
	}
	if placements[1].Member != a || placements[1].Box != (geom.Box{Y: 540, Width: 1920, Height: 540}) {
		t.Errorf("second placement = %v", placements[1])
	}
	if got, ok := srv.OutputOf(a); !ok || got != out {
		t.Error("OutputOf should find the tiling output")
	}
	if len(rec.tiled) != 2 || rec.tiled[0] != "HDMI-A-1/terminal-vertical" {
		t.Errorf("tiled hooks = %v", rec.tiled)
	}

	stats, err := srv.Render(ctx, out, time.Unix(1, 0))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if stats.Configured != 2 || stats.Drawn != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if got := xa.Configures(); len(got) != 1 || got[0] != (geom.Box{Width: 1920, Height: 540}) {
		t.Errorf("a configures = %v", got)
	}
	frame := d.Frame()
	if got := rgba(frame.At(10, 10)); got != blue {
		t.Errorf("top tile = %v, want blue", got)
	}
	if got := rgba(frame.At(10, 600)); got != red {
		t.Errorf("bottom tile = %v, want red", got)
	}
}

func TestUnsupportedRoleIsIgnored(t *testing.T) {
	rec := recordTree(t)
	srv, b := newTestServer()
	ctx := context.Background()
	srv.NewOutput(ctx, b.NewDisplay("DP-1", 800, 600, 1))

	popup := headlessPopup()
	s, err := srv.NewSurface(ctx, popup)
	if !errors.Is(err, errors.ErrCodeUnsupportedRole) {
		t.Fatalf("err = %v", err)
	}
	if s != nil || len(srv.Surfaces()) != 0 {
		t.Error("popup should not be tracked")
	}
	if popup.Tiled() {
		t.Error("popup should not be marked tiled")
	}
	if len(rec.ignored) != 1 {
		t.Errorf("ignored hooks = %v", rec.ignored)
	}
}

func TestPendingSurfacesAdoptedByFirstOutput(t *testing.T) {
	srv, b := newTestServer()
	ctx := context.Background()

	a := mustSurface(t, srv, toplevel("a", red))
	c := mustSurface(t, srv, toplevel("c", blue))
	if len(srv.Pending()) != 2 || a.Slot().Tiled() {
		t.Fatal("surfaces should wait for an output")
	}

	out := srv.NewOutput(ctx, b.NewDisplay("DP-1", 100, 100, 1))
	if len(srv.Pending()) != 0 {
		t.Errorf("Pending() = %d", len(srv.Pending()))
	}
	members := out.Root().(*partition.Terminal).Members()
	if len(members) != 2 || members[0] != c || members[1] != a {
		t.Error("adopted surfaces should keep announcement order, newest first")
	}
}

func TestDestroyOutputRetilesSurfaces(t *testing.T) {
	rec := recordTree(t)
	srv, b := newTestServer()
	ctx := context.Background()

	left := srv.NewOutput(ctx, b.NewDisplay("DP-1", 1000, 500, 1))
	srv.NewOutput(ctx, b.NewDisplay("DP-2", 800, 600, 1))
	a := mustSurface(t, srv, toplevel("a", red))
	c := mustSurface(t, srv, toplevel("c", blue))

	if err := srv.DestroyOutput(ctx, "DP-2"); err != nil {
		t.Fatalf("DestroyOutput: %v", err)
	}
	if srv.FocusedOutput() != left {
		t.Error("focus should move to the remaining output")
	}
	members := left.Root().(*partition.Terminal).Members()
	if len(members) != 2 || members[0] != c || members[1] != a {
		t.Errorf("re-tiled members out of order")
	}
	if len(rec.untiled) != 2 {
		t.Errorf("untiled hooks = %v", rec.untiled)
	}
	if err := srv.DestroyOutput(ctx, "DP-2"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("second destroy err = %v", err)
	}
}

func TestDestroyOutputReflowsLayout(t *testing.T) {
	srv, b := newTestServer()
	ctx := context.Background()

	srv.NewOutput(ctx, b.NewDisplay("DP-1", 1000, 500, 1))
	right := srv.NewOutput(ctx, b.NewDisplay("DP-2", 800, 600, 1))
	mustSurface(t, srv, toplevel("a", red))

	if err := srv.DestroyOutput(ctx, "DP-1"); err != nil {
		t.Fatal(err)
	}
	if got := right.Box(); got != (geom.Box{Width: 800, Height: 600}) {
		t.Errorf("box after reflow = %v", got)
	}
	if !right.NeedsConfigure() {
		t.Error("reflowed output should reconfigure on its next frame")
	}
	if srv.FocusedOutput() != right {
		t.Error("focus should stay on the surviving output")
	}
}

func TestDestroyLastOutputLeavesSurfacesPending(t *testing.T) {
	srv, b := newTestServer()
	ctx := context.Background()

	srv.NewOutput(ctx, b.NewDisplay("DP-1", 100, 100, 1))
	a := mustSurface(t, srv, toplevel("a", red))
	srv.Close(ctx)

	if a.Slot().Tiled() {
		t.Error("surface should be detached")
	}
	if srv.Focused() != nil || len(srv.Outputs()) != 0 {
		t.Error("no output should remain")
	}
	if p := srv.Pending(); len(p) != 1 || p[0] != a {
		t.Errorf("Pending() = %v", p)
	}
}

func TestDestroySurface(t *testing.T) {
	srv, b := newTestServer()
	ctx := context.Background()
	out := srv.NewOutput(ctx, b.NewDisplay("DP-1", 100, 100, 1))

	a := mustSurface(t, srv, toplevel("a", red))
	c := mustSurface(t, srv, toplevel("c", blue))
	if _, err := srv.Render(ctx, out, time.Now()); err != nil {
		t.Fatal(err)
	}

	if err := srv.DestroySurface(ctx, c.ID()); err != nil {
		t.Fatalf("DestroySurface: %v", err)
	}
	if _, ok := srv.Surface(c.ID()); ok {
		t.Error("destroyed surface still tracked")
	}
	if !out.NeedsConfigure() {
		t.Error("removal should schedule a configure")
	}
	placements := out.Placements()
	if len(placements) != 1 || placements[0].Member != a || placements[0].Box.Height != 100 {
		t.Errorf("placements = %v", placements)
	}
	if err := srv.DestroySurface(ctx, c.ID()); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestDroppedFrameIsIsolated(t *testing.T) {
	srv, b := newTestServer()
	ctx := context.Background()

	d1 := b.NewDisplay("DP-1", 200, 100, 1)
	d2 := b.NewDisplay("DP-2", 200, 100, 1)
	o1 := srv.NewOutput(ctx, d1)
	o2 := srv.NewOutput(ctx, d2)
	mustSurface(t, srv, toplevel("a", red))

	d1.FailCommit = errors.New(errors.ErrCodeInternal, "gpu reset")
	if _, err := srv.Render(ctx, o1, time.Now()); !errors.Is(err, errors.ErrCodeRenderTarget) {
		t.Fatalf("err = %v", err)
	}
	if o1.State().String() != "idle" {
		t.Errorf("state after drop = %v", o1.State())
	}
	if _, err := srv.Render(ctx, o2, time.Now()); err != nil {
		t.Fatalf("other output should render: %v", err)
	}
	if d2.Commits() != 1 || d1.Commits() != 0 {
		t.Errorf("commits = %d, %d", d1.Commits(), d2.Commits())
	}
	if _, err := srv.Render(ctx, o1, time.Now()); err != nil {
		t.Errorf("next frame on the failed output: %v", err)
	}
}

func TestRefreshLayoutAfterScaleChange(t *testing.T) {
	srv, b := newTestServer()
	ctx := context.Background()

	d1 := b.NewDisplay("DP-1", 2000, 1000, 1)
	srv.NewOutput(ctx, d1)
	o2 := srv.NewOutput(ctx, b.NewDisplay("DP-2", 800, 600, 1))

	d1.SetScale(2)
	srv.RefreshLayout()
	if got := o2.Box(); got.X != 1000 {
		t.Errorf("DP-2 box after scale change = %v", got)
	}
}

func TestReconfigureTakesEffectOnNextFrame(t *testing.T) {
	srv, b := newTestServer()
	ctx := context.Background()

	d := b.NewDisplay("DP-1", 1920, 1080, 1)
	out := srv.NewOutput(ctx, d)
	x := toplevel("a", red)
	mustSurface(t, srv, x)

	box := geom.Box{Width: 800, Height: 600}
	srv.Reconfigure(out, box)
	if _, err := srv.Render(ctx, out, time.Unix(1, 0)); err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := x.Configures()
	if len(got) == 0 || got[len(got)-1] != box {
		t.Errorf("configures = %v, want last %v", got, box)
	}
	if p := out.Placements(); len(p) != 1 || p[0].Box != box {
		t.Errorf("placements = %v, want one tile %v", p, box)
	}
	if lb, ok := srv.Layout().Box(d); !ok || lb != box {
		t.Errorf("layout box = %v, want %v", lb, box)
	}
}
