package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bitter/pkg/observability"
)

// logHooks reports frame and tree events through the CLI logger.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnFrameStart(context.Context, string) {}

func (h logHooks) OnFrameComplete(_ context.Context, output string, drawn, skipped int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("frame dropped", "output", output, "err", err)
		return
	}
	h.logger.Debug("frame", "output", output, "drawn", drawn, "skipped", skipped, "duration", d)
}

func (h logHooks) OnSurfaceTiled(_ context.Context, output, surfaceID, terminalKind string) {
	h.logger.Info("surface tiled", "output", output, "surface", surfaceID, "node", terminalKind)
}

func (h logHooks) OnSurfaceUntiled(_ context.Context, surfaceID string) {
	h.logger.Info("surface untiled", "surface", surfaceID)
}

func (h logHooks) OnSurfaceIgnored(_ context.Context, reason string) {
	h.logger.Info("surface ignored", "reason", reason)
}

// installLogHooks registers logging hooks and returns a function that
// restores the no-op hooks.
func installLogHooks(logger *log.Logger) func() {
	h := logHooks{logger: logger}
	observability.SetFrameHooks(h)
	observability.SetTreeHooks(h)
	return observability.Reset
}
