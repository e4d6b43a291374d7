// Package observability provides hooks for metrics, tracing, and logging.
//
// The core calls hooks at frame and tree boundaries without depending on any
// particular backend. The default hooks do nothing; an application registers
// its own at startup:
//
//	func main() {
//	    observability.SetFrameHooks(&myFrameHooks{})
//	    observability.SetTreeHooks(&myTreeHooks{})
//	    // ... run the compositor
//	}
//
// Core packages emit events through the getters:
//
//	observability.Frames().OnFrameStart(ctx, output)
//	// ... render ...
//	observability.Frames().OnFrameComplete(ctx, output, drawn, skipped, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Frame Hooks
// =============================================================================

// FrameHooks receives events from the per-output render pass.
type FrameHooks interface {
	// OnFrameStart records the start of a frame on output.
	OnFrameStart(ctx context.Context, output string)

	// OnFrameComplete records a finished or dropped frame. err is non-nil
	// when the frame was dropped.
	OnFrameComplete(ctx context.Context, output string, drawn, skipped int, duration time.Duration, err error)
}

// =============================================================================
// Tree Hooks
// =============================================================================

// TreeHooks receives events about tiling membership.
type TreeHooks interface {
	// OnSurfaceTiled records a surface entering a terminal node.
	OnSurfaceTiled(ctx context.Context, output, surfaceID, terminalKind string)

	// OnSurfaceUntiled records a surface leaving the tree.
	OnSurfaceUntiled(ctx context.Context, surfaceID string)

	// OnSurfaceIgnored records a surface that could not be tiled.
	OnSurfaceIgnored(ctx context.Context, reason string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFrameHooks is a no-op implementation of FrameHooks.
type NoopFrameHooks struct{}

func (NoopFrameHooks) OnFrameStart(context.Context, string)                                    {}
func (NoopFrameHooks) OnFrameComplete(context.Context, string, int, int, time.Duration, error) {}

// NoopTreeHooks is a no-op implementation of TreeHooks.
type NoopTreeHooks struct{}

func (NoopTreeHooks) OnSurfaceTiled(context.Context, string, string, string) {}
func (NoopTreeHooks) OnSurfaceUntiled(context.Context, string)               {}
func (NoopTreeHooks) OnSurfaceIgnored(context.Context, string)               {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	frameHooks FrameHooks = NoopFrameHooks{}
	treeHooks  TreeHooks  = NoopTreeHooks{}
	hooksMu    sync.RWMutex
)

// SetFrameHooks registers custom frame hooks.
// This should be called once at startup before any output renders.
func SetFrameHooks(h FrameHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		frameHooks = h
	}
}

// SetTreeHooks registers custom tree hooks.
func SetTreeHooks(h TreeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		treeHooks = h
	}
}

// Frames returns the registered frame hooks.
func Frames() FrameHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return frameHooks
}

// Tree returns the registered tree hooks.
func Tree() TreeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return treeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	frameHooks = NoopFrameHooks{}
	treeHooks = NoopTreeHooks{}
}
