package output

import "github.com/matzehuels/bitter/pkg/geom"

type layoutEntry struct {
	display Display
	box     geom.Box
}

// AutoLayout arranges displays in a single row, left to right, in the order
// they were added. Each display occupies its effective resolution.
type AutoLayout struct {
	entries []layoutEntry
}

// NewAutoLayout creates an empty layout.
func NewAutoLayout() *AutoLayout {
	return &AutoLayout{}
}

// Add places d to the right of every display already in the layout and
// returns its box. Adding a display twice returns its existing box.
func (l *AutoLayout) Add(d Display) geom.Box {
	if b, ok := l.Box(d); ok {
		return b
	}
	w, h := d.EffectiveResolution()
	box := geom.Box{X: l.Extents().Width, Width: w, Height: h}
	l.entries = append(l.entries, layoutEntry{display: d, box: box})
	return box
}

// Remove takes d out of the layout and closes the gap it leaves. It reports
// whether d was present.
func (l *AutoLayout) Remove(d Display) bool {
	for i, e := range l.entries {
		if e.display == d {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			l.reflow()
			return true
		}
	}
	return false
}

// Set moves d to box without touching the other displays. It reports
// whether d was present. The next Refresh or Remove reflows the row again.
func (l *AutoLayout) Set(d Display, box geom.Box) bool {
	for i := range l.entries {
		if l.entries[i].display == d {
			l.entries[i].box = box
			return true
		}
	}
	return false
}

// Refresh re-reads every display's resolution and reflows the row, for use
// after a mode or scale change.
func (l *AutoLayout) Refresh() {
	l.reflow()
}

func (l *AutoLayout) reflow() {
	x := 0
	for i := range l.entries {
		w, h := l.entries[i].display.EffectiveResolution()
		l.entries[i].box = geom.Box{X: x, Width: w, Height: h}
		x += w
	}
}

// Box returns the layout box of d.
func (l *AutoLayout) Box(d Display) (geom.Box, bool) {
	for _, e := range l.entries {
		if e.display == d {
			return e.box, true
		}
	}
	return geom.Box{}, false
}

// Extents returns the bounding box of every display in the layout.
func (l *AutoLayout) Extents() geom.Box {
	var ext geom.Box
	for _, e := range l.entries {
		if right := e.box.X + e.box.Width; right > ext.Width {
			ext.Width = right
		}
		if bottom := e.box.Y + e.box.Height; bottom > ext.Height {
			ext.Height = bottom
		}
	}
	return ext
}

// Len returns the number of displays in the layout.
func (l *AutoLayout) Len() int { return len(l.entries) }

var _ Layout = (*AutoLayout)(nil)
