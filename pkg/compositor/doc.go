// Package compositor routes display-server events into the tiling tree and
// the per-output render pass.
//
// [Server] owns the outputs, the registry of known surfaces and the focused
// partition node that receives new surfaces. Every new output becomes the
// focus target. Server methods are not safe for concurrent use: an external
// event source either calls them from a single goroutine, or posts typed
// events to a [Loop], which applies them one at a time:
//
//	srv := compositor.New(compositor.Options{Renderer: r, Logger: logger})
//	loop := compositor.NewLoop(srv, 64)
//	go loop.Run(ctx)
//
//	loop.Post(ctx, compositor.NewOutput{Display: d})
//	loop.Post(ctx, compositor.FrameReady{Output: d.Name(), When: time.Now()})
//
// Surfaces whose protocol role cannot be tiled are reported with an
// UNSUPPORTED_ROLE error and otherwise ignored.
package compositor
