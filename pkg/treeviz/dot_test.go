package treeviz

import (
	"strings"
	"testing"

	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/partition"
)

type window struct {
	name string
	slot partition.Slot
}

func (w *window) Slot() *partition.Slot { return &w.slot }

func label(m partition.Member) string { return m.(*window).name }

func TestToDOTTerminal(t *testing.T) {
	root := partition.New()
	partition.Insert(root, &window{name: "a"})
	partition.Insert(root, &window{name: "b"})

	dot := ToDOT(root, Options{Label: label})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Error("missing digraph declaration")
	}
	for _, want := range []string{
		`"n0" [label="terminal-vertical\n2 member(s)"]`,
		`"n1" [label="b", shape=ellipse`,
		`"n2" [label="a", shape=ellipse`,
		`"n0" -> "n1" [label="0"]`,
		`"n0" -> "n2" [label="1"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("missing %s in\n%s", want, dot)
		}
	}
}

func TestToDOTSplit(t *testing.T) {
	left := partition.NewTerminal(partition.Horizontal)
	right := partition.New()
	root := partition.NewSplit(partition.Vertical, left, right)
	partition.Insert(root, &window{name: "x"})

	dot := ToDOT(root, Options{Label: label, Box: geom.Box{Width: 100, Height: 100}})

	for _, want := range []string{
		`[label="split-vertical", fillcolor=lightgrey]`,
		`"n0" -> "n1" [label="top"]`,
		`"n0" -> "n2" [label="bottom"]`,
		`label="x\n(0,50 100x50)"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("missing %s in\n%s", want, dot)
		}
	}
}

func TestToDOTDefaultLabels(t *testing.T) {
	root := partition.NewSplit(partition.Horizontal, partition.New(), partition.New())
	partition.Insert(root, &window{})
	partition.Insert(root, &window{})

	dot := ToDOT(root, Options{})
	if !strings.Contains(dot, `"member 1"`) || !strings.Contains(dot, `"member 2"`) {
		t.Errorf("members should be numbered:\n%s", dot)
	}
	if !strings.Contains(dot, `[label="left"]`) || !strings.Contains(dot, `[label="right"]`) {
		t.Errorf("horizontal split edges should be left/right:\n%s", dot)
	}
}

func TestToDOTNil(t *testing.T) {
	if dot := ToDOT(nil, Options{}); !strings.HasSuffix(dot, "nodesep=0.3;\n\n}\n") {
		t.Errorf("nil tree should produce an empty graph:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116">`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox should pass through, got %s", got)
	}
}
