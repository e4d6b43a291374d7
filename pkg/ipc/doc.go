// Package ipc exposes a running compositor over HTTP.
//
// The API is a small JSON control surface in the spirit of a window
// manager's IPC socket:
//
//	GET    /outputs                  tiling state of every output
//	POST   /outputs                  create a headless display
//	GET    /outputs/{name}           tiling state of one output
//	DELETE /outputs/{name}           destroy an output
//	GET    /outputs/{name}/tree      partition tree as DOT (?format=svg)
//	GET    /outputs/{name}/frame.png last committed frame
//	GET    /snapshot                 full snapshot, pending surfaces included
//	POST   /surfaces                 announce a headless client surface
//	DELETE /surfaces/{id}            destroy a surface
//	POST   /frame                    render a frame on every output
//
// Handlers never touch the compositor directly: each request is run on the
// compositor's event loop through [compositor.Loop.Do].
package ipc
