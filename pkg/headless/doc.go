// Package headless is a software backend for running the compositor core
// without a display server.
//
// It provides the collaborators the core consumes:
//
//   - [Renderer]: an [output.Renderer] that rasterises frames with gg
//   - [Display]: an [output.Display] that keeps its last committed frame
//   - [Surface]: a scripted [surface.XDGSurface] that acknowledges configures
//     immediately and commits a solid-colour buffer
//
// The headless backend backs the CLI's layout, render, serve and preview
// commands, and doubles as a test fixture for the core packages.
//
// [output.Renderer]: github.com/matzehuels/bitter/pkg/output#Renderer
// [output.Display]: github.com/matzehuels/bitter/pkg/output#Display
// [surface.XDGSurface]: github.com/matzehuels/bitter/pkg/surface#XDGSurface
package headless
