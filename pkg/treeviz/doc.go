// Package treeviz draws a partition tree as a Graphviz diagram.
//
// [ToDOT] emits DOT source with one box per split or terminal node and one
// ellipse per tiled member. Split children are labelled with the half they
// cover. [RenderSVG] lays the DOT out with an embedded Graphviz build, so no
// system install is needed.
package treeviz
