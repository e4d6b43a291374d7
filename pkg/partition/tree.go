package partition

import "github.com/matzehuels/bitter/pkg/geom"

// Insert places m into the tree rooted at n and returns the Terminal that
// now holds it.
//
// Split nodes always descend into their right child. The member is
// prepended, so the newest member comes first in traversal order. A member
// that is already tiled is detached from its previous Terminal first.
func Insert(n Node, m Member) *Terminal {
	for {
		switch v := n.(type) {
		case *Split:
			n = v.Right
		case *Terminal:
			if owner := m.Slot().owner; owner != nil {
				owner.remove(m)
			}
			v.prepend(m)
			return v
		default:
			panic("partition: insert into nil node")
		}
	}
}

// Remove detaches m from whichever Terminal holds it.
// It reports whether m was tiled.
func Remove(m Member) bool {
	owner := m.Slot().owner
	if owner == nil {
		return false
	}
	return owner.remove(m)
}

// Release tears down the tree rooted at n: every member is detached and
// split children are dropped. The nodes must not be reused afterwards.
func Release(n Node) {
	switch v := n.(type) {
	case *Split:
		Release(v.Left)
		Release(v.Right)
		v.Left, v.Right = nil, nil
	case *Terminal:
		for _, m := range v.members {
			m.Slot().owner = nil
		}
		v.members = nil
	}
}

// Walk computes the box of every member below n, given that n covers box,
// and calls visit for each in traversal order. Walk never mutates the tree;
// visit must not either.
func Walk(n Node, box geom.Box, visit func(Member, geom.Box)) {
	switch v := n.(type) {
	case *Split:
		var first, second geom.Box
		if v.Orientation == Horizontal {
			first, second = box.HalveHorizontal()
		} else {
			first, second = box.HalveVertical()
		}
		Walk(v.Left, first, visit)
		Walk(v.Right, second, visit)
	case *Terminal:
		if len(v.members) == 0 {
			return
		}
		var slices []geom.Box
		if v.Orientation == Horizontal {
			slices = box.SliceHorizontal(len(v.members))
		} else {
			slices = box.SliceVertical(len(v.members))
		}
		for i, m := range v.members {
			visit(m, slices[i])
		}
	}
}

// Placement pairs a member with the box computed for it.
type Placement struct {
	Member Member
	Box    geom.Box
}

// Layout returns the placements Walk would visit, in the same order.
func Layout(n Node, box geom.Box) []Placement {
	var out []Placement
	Walk(n, box, func(m Member, b geom.Box) {
		out = append(out, Placement{Member: m, Box: b})
	})
	return out
}

// Count returns the number of members tiled below n.
func Count(n Node) int {
	switch v := n.(type) {
	case *Split:
		return Count(v.Left) + Count(v.Right)
	case *Terminal:
		return len(v.members)
	}
	return 0
}

// Terminals returns every Terminal below n, left subtree first.
func Terminals(n Node) []*Terminal {
	switch v := n.(type) {
	case *Split:
		return append(Terminals(v.Left), Terminals(v.Right)...)
	case *Terminal:
		return []*Terminal{v}
	}
	return nil
}
