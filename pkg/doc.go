// Package pkg provides the core libraries of bitter, a tiling layout and
// compositing core.
//
// # Overview
//
// bitter arranges client windows on outputs with a binary space partition:
// every output owns a tree whose splits divide its area in half and whose
// leaves hold tiled surfaces. Each frame walks the tree, hands every surface
// its box and draws the surface's buffers at the right place. The pkg
// directory is organized into four areas:
//
//  1. Layout - [geom], [partition]
//  2. Clients and outputs - [surface], [output], [headless]
//  3. Orchestration - [compositor], [observability], [errors]
//  4. Tooling - [config], [scene], [snapshot], [treeviz], [ipc]
//
// # Architecture
//
// Events flow in one direction:
//
//	backend events (output added, surface created, frame ready)
//	         ↓
//	    [compositor] Loop (single goroutine)
//	         ↓
//	    [compositor] Server (tree insertion, focus, output lifecycle)
//	         ↓
//	    [output] render pass (walk, configure, draw, commit)
//	         ↓
//	    Renderer / Display
//
// # Quick Start
//
// Tile two clients on a headless output and render a frame:
//
//	backend := headless.NewBackend()
//	srv := compositor.New(compositor.Options{Renderer: backend.Renderer()})
//	out := srv.NewOutput(ctx, backend.NewDisplay("DP-1", 1920, 1080, 1))
//
//	for _, title := range []string{"editor", "shell"} {
//	    client := headless.NewSurface(headless.SurfaceOptions{
//	        Title: title,
//	        Role:  surface.RoleToplevel,
//	    })
//	    if _, err := srv.NewSurface(ctx, client); err != nil {
//	        return err
//	    }
//	}
//
//	stats, err := srv.Render(ctx, out, time.Now())
//
// # Packages
//
// [partition] - The binary space partition. Terminals hold members, splits
// divide a box horizontally or vertically. Walks yield (member, box) pairs.
//
// [surface] - The client surface abstraction. XDG toplevels can be tiled;
// other roles are rejected with UNSUPPORTED_ROLE.
//
// [output] - One physical or virtual display: its tree, the frame state
// machine and the render pass. AutoLayout places outputs left to right.
//
// [compositor] - The server that owns outputs and surfaces, plus the Loop
// that serializes backend events onto one goroutine.
//
// [headless] - An in-memory backend built on fogleman/gg, used by the CLI,
// the control API and the tests.
//
// [scene] - TOML scene files describing outputs and scripted clients.
//
// [snapshot] - Read-only views of the layout as JSON or SVG wireframes.
//
// [treeviz] - Partition trees as Graphviz DOT and SVG.
//
// [ipc] - The HTTP control API for a running loop.
//
// # Testing
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/partition/...    # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// [compositor]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/compositor
// [config]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/errors
// [geom]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/geom
// [headless]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/headless
// [ipc]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/ipc
// [observability]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/observability
// [output]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/output
// [partition]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/partition
// [scene]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/scene
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/snapshot
// [surface]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/surface
// [treeviz]: https://pkg.go.dev/github.com/matzehuels/bitter/pkg/treeviz
package pkg
