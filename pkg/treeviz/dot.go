package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/partition"
)

// Options configures DOT generation.
type Options struct {
	// Label names a member. Members are numbered when nil.
	Label func(partition.Member) string
	// Box, when non-empty, is the box covered by the root; each member's
	// computed box is then added to its label.
	Box geom.Box
}

// ToDOT converts the tree rooted at n to Graphviz DOT format.
func ToDOT(n partition.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	w := &dotWriter{buf: &buf, opts: opts}
	if !opts.Box.Empty() {
		w.boxes = make(map[partition.Member]geom.Box)
		partition.Walk(n, opts.Box, func(m partition.Member, b geom.Box) { w.boxes[m] = b })
	}
	if n != nil {
		w.node(n)
	}

	buf.WriteString("}\n")
	return buf.String()
}

type dotWriter struct {
	buf     *bytes.Buffer
	opts    Options
	boxes   map[partition.Member]geom.Box
	next    int
	members int
}

func (w *dotWriter) id() string {
	id := "n" + strconv.Itoa(w.next)
	w.next++
	return id
}

func (w *dotWriter) node(n partition.Node) string {
	id := w.id()
	switch v := n.(type) {
	case *partition.Split:
		fmt.Fprintf(w.buf, "  %q [label=%q, fillcolor=lightgrey];\n", id, v.Kind().String())
		first, second := "left", "right"
		if v.Orientation == partition.Vertical {
			first, second = "top", "bottom"
		}
		left := w.node(v.Left)
		right := w.node(v.Right)
		fmt.Fprintf(w.buf, "  %q -> %q [label=%q];\n", id, left, first)
		fmt.Fprintf(w.buf, "  %q -> %q [label=%q];\n", id, right, second)
	case *partition.Terminal:
		label := fmt.Sprintf("%s\n%d member(s)", v.Kind(), v.Len())
		fmt.Fprintf(w.buf, "  %q [label=%q];\n", id, label)
		for i, m := range v.Members() {
			mid := w.id()
			fmt.Fprintf(w.buf, "  %q [label=%q, shape=ellipse, fillcolor=\"#cfe8e8\"];\n", mid, w.memberLabel(m))
			fmt.Fprintf(w.buf, "  %q -> %q [label=%q];\n", id, mid, strconv.Itoa(i))
		}
	}
	return id
}

func (w *dotWriter) memberLabel(m partition.Member) string {
	w.members++
	label := fmt.Sprintf("member %d", w.members)
	if w.opts.Label != nil {
		label = w.opts.Label(m)
	}
	if b, ok := w.boxes[m]; ok {
		label += "\n" + b.String()
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// whose viewBox starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
