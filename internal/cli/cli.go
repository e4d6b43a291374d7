package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bitter/pkg/buildinfo"
	"github.com/matzehuels/bitter/pkg/compositor"
	"github.com/matzehuels/bitter/pkg/config"
	"github.com/matzehuels/bitter/pkg/headless"
	"github.com/matzehuels/bitter/pkg/scene"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "bitter"

	// defaultLoopBuffer is the event queue size of long-running sessions.
	defaultLoopBuffer = 64
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "bitter tiles windows with a binary space partition",
		Long:         `bitter is a tiling layout and compositing core. It lays out scripted client surfaces on virtual outputs, renders frames headlessly and exposes a live session over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Session Factory
// =============================================================================

// loadConfig reads and validates the runtime configuration.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openScene loads a scene file and applies it to a fresh headless server.
// The scene's background wins over the configured one.
func (c *CLI) openScene(ctx context.Context, path string) (*scene.Session, error) {
	sc, err := scene.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", path, err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	bg, _ := cfg.BackgroundColor()

	backend := headless.NewBackend()
	opts := sc.Options(backend, bg)
	opts.Logger = c.Logger
	srv := compositor.New(opts)

	sess, err := sc.Apply(ctx, srv, backend)
	if err != nil {
		return nil, fmt.Errorf("apply scene %s: %w", path, err)
	}
	c.Logger.Debug("scene applied", "scene", path, "outputs", len(sc.Outputs),
		"surfaces", len(sess.Surfaces), "ignored", sess.Ignored)
	return sess, nil
}
