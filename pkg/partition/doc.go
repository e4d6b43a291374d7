// Package partition implements the space-partitioning tree that assigns
// screen regions to tiled surfaces.
//
// # Overview
//
// A tree is built from two node variants:
//
//   - [Split]: a region divided in half, horizontally or vertically, between
//     two owned children.
//   - [Terminal]: a leaf region holding an ordered list of [Member] values,
//     equally subdividing its box among them.
//
// [Node] is a sealed interface, so a node is always exactly one of the two;
// there is no state in which a node has both children and members.
//
// # Insertion
//
// [Insert] descends through Split nodes into their right child and prepends
// the member to the first Terminal it reaches. The most recently inserted
// member is therefore visited first.
//
//	root := partition.New() // empty Terminal, vertical
//	partition.Insert(root, a)
//	partition.Insert(root, b) // b now sits above a
//
// # Layout
//
// Geometry is never cached. [Walk] recomputes every member's box from the
// tree shape and the root box each time it runs, so membership changes need
// no invalidation:
//
//	partition.Walk(root, geom.Box{Width: 1920, Height: 1080}, func(m partition.Member, b geom.Box) {
//	    fmt.Println(b)
//	})
//
// # Membership
//
// Members carry a [Slot], a non-owning back-reference to the Terminal that
// holds them. A member is tiled in at most one Terminal at a time; [Remove]
// and [Release] clear the slot so no stale reference survives the tree.
//
// The package is not safe for concurrent use. All mutation is expected to
// happen on the compositor's event goroutine.
package partition
