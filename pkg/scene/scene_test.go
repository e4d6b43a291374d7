package scene

import (
	"context"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bitter/pkg/compositor"
	"github.com/matzehuels/bitter/pkg/errors"
	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/headless"
	"github.com/matzehuels/bitter/pkg/output"
	"github.com/matzehuels/bitter/pkg/partition"
	"github.com/matzehuels/bitter/pkg/surface"
)

const twoOutputs = `
root = "horizontal"
background = "#101010"

[[output]]
name = "DP-1"
width = 1000
height = 500

[[output]]
name = "DP-2"
width = 800
height = 600

[[surface]]
title = "editor"
color = "#ff0000"
output = "DP-1"

[[surface]]
title = "shell"
color = "#0000ff"
output = "DP-1"

[[surface]]
title = "menu"
role = "popup"

[[surface]]
title = "browser"
inset = 8

[[surface.child]]
x = 10
y = 10
width = 50
height = 20
`

func apply(t *testing.T, body string) *Session {
	t.Helper()
	sc, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	backend := headless.NewBackend()
	opts := sc.Options(backend, output.DefaultBackground)
	opts.Logger = log.New(io.Discard)
	sess, err := sc.Apply(context.Background(), compositor.New(opts), backend)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return sess
}

func titleOf(m partition.Member) string {
	if surf, ok := m.(surface.Surface); ok {
		return surf.Title()
	}
	return ""
}

func TestParse(t *testing.T) {
	sc, err := Parse([]byte(twoOutputs))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(sc.Outputs) != 2 || len(sc.Surfaces) != 4 {
		t.Fatalf("outputs = %d, surfaces = %d", len(sc.Outputs), len(sc.Surfaces))
	}
	if sc.RootOrientation() != partition.Horizontal {
		t.Errorf("RootOrientation() = %v", sc.RootOrientation())
	}
	if got := sc.BackgroundColor(output.DefaultBackground); got != (color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}) {
		t.Errorf("BackgroundColor() = %v", got)
	}
	if c := sc.Surfaces[3].Children; len(c) != 1 || c[0].Width != 50 {
		t.Errorf("children = %+v", c)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `[[output]`},
		{"unknown key", "[[output]]\nname = \"a\"\nwidth = 1\nheight = 1\nrefresh = 60"},
		{"bad root", `root = "diagonal"`},
		{"bad background", `background = "teal"`},
		{"empty output name", "[[output]]\nwidth = 10\nheight = 10"},
		{"duplicate output", "[[output]]\nname = \"a\"\nwidth = 1\nheight = 1\n[[output]]\nname = \"a\"\nwidth = 1\nheight = 1"},
		{"zero size", "[[output]]\nname = \"a\"\nwidth = 0\nheight = 1"},
		{"negative scale", "[[output]]\nname = \"a\"\nwidth = 1\nheight = 1\nscale = -1.0"},
		{"bad role", "[[surface]]\nrole = \"dialog\""},
		{"bad colour", "[[surface]]\ncolor = \"red\""},
		{"negative inset", "[[surface]]\ninset = -1"},
		{"unknown output", "[[surface]]\noutput = \"DP-9\""},
		{"empty child", "[[surface]]\n[[surface.child]]\nwidth = 0\nheight = 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidScene) {
				t.Errorf("Parse() = %v, want INVALID_SCENE", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	if err := os.WriteFile(path, []byte(twoOutputs), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Errorf("Load: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestApplyPlacesSurfaces(t *testing.T) {
	sess := apply(t, twoOutputs)
	srv := sess.Server

	if sess.Ignored != 1 || len(sess.Surfaces) != 3 {
		t.Fatalf("ignored = %d, surfaces = %d", sess.Ignored, len(sess.Surfaces))
	}

	dp1, _ := srv.Output("DP-1")
	dp2, _ := srv.Output("DP-2")
	var titles []string
	for _, p := range dp1.Placements() {
		titles = append(titles, titleOf(p.Member))
	}
	if strings.Join(titles, ",") != "shell,editor" {
		t.Errorf("DP-1 titles = %v", titles)
	}
	p := dp1.Placements()
	if p[0].Box != (geom.Box{Width: 500, Height: 500}) || p[1].Box != (geom.Box{X: 500, Width: 500, Height: 500}) {
		t.Errorf("DP-1 boxes = %v, %v", p[0].Box, p[1].Box)
	}

	p2 := dp2.Placements()
	if len(p2) != 1 || titleOf(p2[0].Member) != "browser" {
		t.Fatalf("DP-2 placements = %v", p2)
	}
	if p2[0].Box != (geom.Box{X: 1000, Width: 800, Height: 600}) {
		t.Errorf("DP-2 box = %v", p2[0].Box)
	}
}

func TestSessionFrame(t *testing.T) {
	sess := apply(t, twoOutputs)
	ctx := context.Background()

	d1, _ := sess.Display("DP-1")
	d1.FailCommit = io.ErrClosedPipe
	stats, err := sess.Frame(ctx, time.Unix(10, 0))
	if !errors.Is(err, errors.ErrCodeRenderTarget) {
		t.Fatalf("Frame() err = %v", err)
	}
	if st := stats["DP-2"]; st.Drawn != 2 || st.Configured != 1 {
		t.Errorf("DP-2 stats = %+v", st)
	}

	if _, err := sess.Frame(ctx, time.Unix(11, 0)); err != nil {
		t.Fatalf("second frame: %v", err)
	}
	frame := d1.Frame()
	red := color.RGBAModel.Convert(frame.At(510, 20)).(color.RGBA)
	if red != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Errorf("editor tile pixel = %v", red)
	}
	for _, c := range sess.Clients {
		if c.Buffer().FramesDone() == 0 {
			t.Errorf("%s never received a frame callback", c.Title())
		}
	}
}

func TestExampleScenes(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "scenes", "*.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no example scenes")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			sc, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if err := sc.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}
