package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bitter/pkg/compositor"
	"github.com/matzehuels/bitter/pkg/config"
	"github.com/matzehuels/bitter/pkg/headless"
	"github.com/matzehuels/bitter/pkg/ipc"
	"github.com/matzehuels/bitter/pkg/partition"
	"github.com/matzehuels/bitter/pkg/scene"
)

// serveCommand creates the serve command that runs a live headless session.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		scenePath string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a live headless session with an HTTP control API",
		Long: `Run a live headless session with an HTTP control API.

The session starts with one virtual output configured by the output.* keys
(see BITTER_CONFIG), or with the outputs and surfaces of --scene. A frame
clock fires at output.refresh Hz and every output renders when its frame
is ready. Outputs and surfaces are added and removed over HTTP:

  curl -X POST localhost:7878/surfaces -d '{"title":"term"}'
  curl localhost:7878/outputs
  curl -X POST localhost:7878/frame

Stop the session with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), scenePath, addr)
		},
	}

	cmd.Flags().StringVar(&scenePath, "scene", "", "scene file to start from")
	cmd.Flags().StringVar(&addr, "addr", "", "IPC listen address (default: ipc.addr)")

	return cmd
}

// runServe builds the session, then runs the event loop, the frame clock
// and the IPC server until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, scenePath, addr string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if applyConfiguredLevel(c.Logger, cfg.Log.Level) {
		c.Logger.Debug("log level from config", "level", cfg.Log.Level)
	}
	if addr == "" {
		addr = cfg.IPC.Addr
	}

	backend := headless.NewBackend()
	srv, err := c.newServeServer(ctx, cfg, backend, scenePath)
	if err != nil {
		return err
	}
	defer installLogHooks(c.Logger)()

	loop := compositor.NewLoop(srv, defaultLoopBuffer)
	api := ipc.NewServer(loop, backend, c.Logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan error, 1)
	apiDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()
	go func() { apiDone <- api.ListenAndServe(ctx, addr) }()
	go runFrameClock(ctx, loop, cfg.FrameInterval())

	printSuccess("Session running")
	printKeyValue("IPC", "http://"+addr)
	printKeyValue("Refresh", fmt.Sprintf("%d Hz", cfg.Output.Refresh))
	printNextStep("Add a window", fmt.Sprintf(`curl -X POST %s/surfaces -d '{"title":"term"}'`, addr))

	var apiErr error
	select {
	case <-loopDone:
		cancel()
		apiErr = <-apiDone
	case apiErr = <-apiDone:
		cancel()
		<-loopDone
	}
	srv.Close(context.Background())

	if apiErr != nil && !stderrors.Is(apiErr, context.Canceled) {
		return fmt.Errorf("ipc: %w", apiErr)
	}
	printInfo("Session stopped")
	return nil
}

// newServeServer creates the compositor for serve, seeded either from a
// scene file or from the configured output.
func (c *CLI) newServeServer(ctx context.Context, cfg config.Config, backend *headless.Backend, scenePath string) (*compositor.Server, error) {
	bg, _ := cfg.BackgroundColor()

	if scenePath != "" {
		sc, err := scene.Load(scenePath)
		if err != nil {
			return nil, fmt.Errorf("load scene %s: %w", scenePath, err)
		}
		opts := sc.Options(backend, bg)
		opts.Logger = c.Logger
		srv := compositor.New(opts)
		if _, err := sc.Apply(ctx, srv, backend); err != nil {
			return nil, fmt.Errorf("apply scene %s: %w", scenePath, err)
		}
		return srv, nil
	}

	orient, _ := cfg.RootOrientation()
	srv := compositor.New(compositor.Options{
		Renderer:   backend.Renderer(),
		Logger:     c.Logger,
		Background: bg,
		NewRoot:    func() *partition.Terminal { return partition.NewTerminal(orient) },
	})
	o := cfg.Output
	srv.NewOutput(ctx, backend.NewDisplay(o.Name, o.Width, o.Height, o.Scale))
	return srv, nil
}

// runFrameClock posts a FrameReady event for every output once per interval.
func runFrameClock(ctx context.Context, loop *compositor.Loop, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			var names []string
			err := loop.Do(ctx, func(srv *compositor.Server) error {
				for _, o := range srv.Outputs() {
					names = append(names, o.Name())
				}
				return nil
			})
			if err != nil {
				loggerFromContext(ctx).Debug("frame clock stopped", "err", err)
				return
			}
			for _, name := range names {
				if err := loop.Post(ctx, compositor.FrameReady{Output: name, When: now}); err != nil {
					loggerFromContext(ctx).Debug("frame clock stopped", "err", err)
					return
				}
			}
		}
	}
}
