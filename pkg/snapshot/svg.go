package snapshot

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
)

var tilePalette = []string{"#e07a5f", "#3d405b", "#81b29a", "#f2cc8f", "#6d597a", "#b56576"}

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background color.RGBA
	labels     bool
}

// WithBackground sets the fill of each output.
func WithBackground(c color.RGBA) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithoutLabels omits output names and tile titles.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// RenderSVG draws every output as a filled rectangle and every tile as an
// outlined, coloured box inside it.
func RenderSVG(snap Snapshot, opts ...SVGOption) []byte {
	r := svgRenderer{background: color.RGBA{G: 0x80, B: 0x80, A: 0xff}, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := snap.Extents.Width, snap.Extents.Height
	if w == 0 || h == 0 {
		w, h = 1, 1
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n", w, h, w, h)

	fill := fmt.Sprintf("#%02x%02x%02x", r.background.R, r.background.G, r.background.B)
	n := 0
	for _, o := range snap.Outputs {
		b := o.Box
		fmt.Fprintf(&buf, `  <rect class="output" x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n",
			b.X, b.Y, b.Width, b.Height, fill)
		for _, t := range o.Tiles {
			tb := t.Box
			fmt.Fprintf(&buf, `  <rect class="tile" id="tile-%s" x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="#000000" stroke-width="2"/>`+"\n",
				t.ID, tb.X, tb.Y, tb.Width, tb.Height, tilePalette[n%len(tilePalette)])
			if r.labels && t.Title != "" {
				fmt.Fprintf(&buf, `  <text x="%d" y="%d" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="%d" fill="#ffffff">%s</text>`+"\n",
					tb.X+tb.Width/2, tb.Y+tb.Height/2, fontSize(tb), escapeXML(t.Title))
			}
			n++
		}
		if r.labels {
			fmt.Fprintf(&buf, `  <text x="%d" y="%d" font-family="monospace" font-size="14" fill="#ffffff">%s</text>`+"\n",
				b.X+6, b.Y+18, escapeXML(o.Name))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func fontSize(b Rect) int {
	size := min(b.Width, b.Height) / 8
	return max(10, min(size, 48))
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
