package partition

import "fmt"

// Orientation selects the axis along which a node divides its box.
type Orientation uint8

const (
	// Horizontal divides along the x axis (children side by side).
	Horizontal Orientation = iota
	// Vertical divides along the y axis (children stacked).
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Orientation(%d)", uint8(o))
	}
}

// ParseOrientation maps "horizontal"/"h" and "vertical"/"v" to an Orientation.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v", "":
		return Vertical, nil
	}
	return Vertical, fmt.Errorf("unknown orientation %q", s)
}

// Kind identifies the variant and orientation of a node.
type Kind uint8

const (
	SplitHorizontal Kind = iota
	SplitVertical
	TerminalHorizontal
	TerminalVertical
)

var kindNames = [...]string{
	SplitHorizontal:    "split-horizontal",
	SplitVertical:      "split-vertical",
	TerminalHorizontal: "terminal-horizontal",
	TerminalVertical:   "terminal-vertical",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsTerminal reports whether k is one of the Terminal kinds.
func (k Kind) IsTerminal() bool { return k == TerminalHorizontal || k == TerminalVertical }

// Node is a region of display area: either a *Split or a *Terminal.
type Node interface {
	Kind() Kind
	partitionNode()
}

// Split is a region halved between two exclusively owned children.
type Split struct {
	Orientation Orientation
	Left        Node
	Right       Node
}

// NewSplit creates a split node. Both children must be non-nil.
func NewSplit(o Orientation, left, right Node) *Split {
	if left == nil || right == nil {
		panic("partition: split requires two children")
	}
	return &Split{Orientation: o, Left: left, Right: right}
}

// Kind returns SplitHorizontal or SplitVertical.
func (s *Split) Kind() Kind {
	if s.Orientation == Horizontal {
		return SplitHorizontal
	}
	return SplitVertical
}

func (*Split) partitionNode() {}

// Terminal is a leaf region that hosts an ordered list of members.
// The terminal does not own its members, only their tiling membership.
type Terminal struct {
	Orientation Orientation
	members     []Member
}

// NewTerminal creates an empty terminal with the given orientation.
func NewTerminal(o Orientation) *Terminal {
	return &Terminal{Orientation: o}
}

// New creates an empty vertical terminal, the default root of an output.
func New() *Terminal {
	return NewTerminal(Vertical)
}

// Kind returns TerminalHorizontal or TerminalVertical.
func (t *Terminal) Kind() Kind {
	if t.Orientation == Horizontal {
		return TerminalHorizontal
	}
	return TerminalVertical
}

func (*Terminal) partitionNode() {}

// Len returns the number of members.
func (t *Terminal) Len() int { return len(t.members) }

// Members returns a copy of the member sequence in traversal order.
func (t *Terminal) Members() []Member {
	out := make([]Member, len(t.members))
	copy(out, t.members)
	return out
}

// Contains reports whether m is tiled in t.
func (t *Terminal) Contains(m Member) bool {
	return m != nil && m.Slot().owner == t
}

func (t *Terminal) prepend(m Member) {
	t.members = append(t.members, nil)
	copy(t.members[1:], t.members)
	t.members[0] = m
	m.Slot().owner = t
}

func (t *Terminal) remove(m Member) bool {
	for i, cur := range t.members {
		if cur == m {
			copy(t.members[i:], t.members[i+1:])
			t.members[len(t.members)-1] = nil
			t.members = t.members[:len(t.members)-1]
			m.Slot().owner = nil
			return true
		}
	}
	return false
}

// Member is anything that can be tiled inside a Terminal.
type Member interface {
	// Slot returns the member's tiling back-reference. It must return the
	// same pointer on every call.
	Slot() *Slot
}

// Slot records which Terminal, if any, currently tiles a member.
// The zero value is an untiled slot.
type Slot struct {
	owner *Terminal
}

// Owner returns the Terminal tiling the member, or nil.
func (s *Slot) Owner() *Terminal { return s.owner }

// Tiled reports whether the member is currently in a Terminal.
func (s *Slot) Tiled() bool { return s.owner != nil }
