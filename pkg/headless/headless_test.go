package headless

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/surface"
)

var (
	red  = color.RGBA{R: 0xff, A: 0xff}
	blue = color.RGBA{B: 0xff, A: 0xff}
	teal = color.RGBA{G: 0x80, B: 0x80, A: 0xff}
)

func TestRendererDrawsTextures(t *testing.T) {
	r := NewRenderer()
	if err := r.Begin(100, 50); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := r.Begin(10, 10); err == nil {
		t.Error("nested Begin should fail")
	}
	r.Clear(teal)
	r.DrawTexture(&Texture{Color: red, width: 50, height: 50}, geom.Box{Width: 50, Height: 50})
	r.DrawTexture(&Texture{Color: blue, width: 50, height: 50}, geom.Box{X: 50, Width: 50, Height: 50})
	r.End()

	img := r.Image()
	if img == nil {
		t.Fatal("Image() is nil after End")
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("frame bounds = %v", b)
	}
	if got := color.RGBAModel.Convert(img.At(25, 25)).(color.RGBA); got != red {
		t.Errorf("left tile centre = %v, want red", got)
	}
	if got := color.RGBAModel.Convert(img.At(75, 25)).(color.RGBA); got != blue {
		t.Errorf("right tile centre = %v, want blue", got)
	}
	if r.Draws() != 2 {
		t.Errorf("Draws() = %d", r.Draws())
	}
}

func TestRendererRejectsEmptyTarget(t *testing.T) {
	if err := NewRenderer().Begin(0, 10); err == nil {
		t.Error("Begin(0, 10) should fail")
	}
}

func TestDisplayCommitAndFailures(t *testing.T) {
	b := NewBackend()
	d := b.NewDisplay("HEADLESS-1", 3840, 2160, 2)

	if w, h := d.EffectiveResolution(); w != 1920 || h != 1080 {
		t.Errorf("EffectiveResolution() = %dx%d", w, h)
	}
	if err := d.EncodePNG(&bytes.Buffer{}); err == nil {
		t.Error("EncodePNG before any commit should fail")
	}

	boom := errors.New("lost")
	d.FailAttach = boom
	if err := d.AttachRender(); err != boom {
		t.Errorf("AttachRender() = %v", err)
	}
	if err := d.AttachRender(); err != nil {
		t.Errorf("failure should be one-shot, got %v", err)
	}

	r := b.Renderer()
	r.Begin(4, 4)
	r.Clear(teal)
	r.End()
	if err := d.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if d.Commits() != 1 || d.Frame() == nil {
		t.Error("commit should keep the frame")
	}

	var buf bytes.Buffer
	if err := d.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}

	if got, ok := b.Display("HEADLESS-1"); !ok || got != d {
		t.Error("Display lookup failed")
	}
	if _, ok := b.Display("nope"); ok {
		t.Error("unknown display should not be found")
	}
}

func TestDisplayModeAndScale(t *testing.T) {
	d := NewDisplay(NewRenderer(), "x", 1000, 800, 0)
	if d.Scale() != 1 {
		t.Errorf("default scale = %v", d.Scale())
	}
	d.SetScale(1.5)
	d.SetMode(1500, 900)
	if w, h := d.EffectiveResolution(); w != 1000 || h != 600 {
		t.Errorf("EffectiveResolution() = %dx%d", w, h)
	}
	d.SetScale(-1)
	if d.Scale() != 1.5 {
		t.Error("non-positive scale should be ignored")
	}
}

func TestSurfaceCommitsOnConfigure(t *testing.T) {
	s := NewSurface(SurfaceOptions{
		Title:    "term",
		Role:     surface.RoleToplevel,
		Color:    red,
		Inset:    4,
		Children: []Child{{Offset: geom.Point{X: 2, Y: 3}, Width: 10, Height: 10, Color: blue}},
	})

	if s.Buffer().Texture() != nil {
		t.Error("no texture before the first configure")
	}
	if serial := s.SetSize(300, 200); serial != 1 {
		t.Errorf("serial = %d", serial)
	}
	if w, h := s.Buffer().Size(); w != 300 || h != 200 {
		t.Errorf("buffer size = %dx%d", w, h)
	}
	if s.Buffer().Texture() == nil {
		t.Error("texture should be ready after configure")
	}
	if g := s.Geometry(); g.X != -4 || g.Y != -4 {
		t.Errorf("Geometry() = %v", g)
	}

	s.SetTiled(true)
	if !s.Tiled() {
		t.Error("Tiled() should be true")
	}

	var offsets []geom.Point
	s.ForEachSurface(func(b surface.Buffer, sx, sy int) {
		offsets = append(offsets, geom.Point{X: sx, Y: sy})
		b.FrameDone(time.Unix(5, 0))
	})
	if len(offsets) != 2 || offsets[1] != (geom.Point{X: 2, Y: 3}) {
		t.Errorf("offsets = %v", offsets)
	}
	if s.Buffer().FramesDone() != 1 || !s.Buffer().LastFrame().Equal(time.Unix(5, 0)) {
		t.Error("frame done not recorded")
	}
	if got := s.Configures(); len(got) != 1 || got[0] != (geom.Box{Width: 300, Height: 200}) {
		t.Errorf("Configures() = %v", got)
	}
}

func TestUnreadySurfaceHasNoTexture(t *testing.T) {
	s := NewSurface(SurfaceOptions{Role: surface.RoleToplevel, Unready: true, Children: []Child{{Width: 1, Height: 1}}})
	s.SetSize(10, 10)
	s.ForEachSurface(func(b surface.Buffer, _, _ int) {
		if b.Texture() != nil {
			t.Error("unready surface should not expose textures")
		}
	})
}
