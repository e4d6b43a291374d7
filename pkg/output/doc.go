// Package output drives the per-display render pass.
//
// An [Output] owns one physical display handle and the root of its
// partition tree. Each frame, [Output.Render] walks the tree over the
// output's layout box, hands every tiled surface its box and draws the
// surface's sub-surfaces through a [Renderer]:
//
//	idle -> frame-requested -> rendering -> idle
//
// Geometry is recomputed on every frame. [Output.Reconfigure] only records
// the new layout box and marks the output dirty; the next frame sends the
// resulting sizes to the tiled surfaces.
//
// A missing texture is normal (the client has not committed a buffer yet)
// and is skipped silently. Failing to attach, begin or commit the render
// target drops that frame only; the next frame starts afresh.
//
// [AutoLayout] places displays side by side, left to right, and answers
// the layout-box query the render pass uses to translate tile boxes into
// output-local device coordinates.
package output
