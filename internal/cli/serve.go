package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/provgraph/provis/internal/api"
	"github.com/provgraph/provis/pkg/engine"
	"github.com/provgraph/provis/pkg/layout"
	"github.com/provgraph/provis/pkg/pipeline"
	"github.com/provgraph/provis/pkg/prov"
)

// watchDebounce coalesces the event bursts editors produce on save.
const watchDebounce = 500 * time.Millisecond

// serveCommand creates the serve command for hosting a layout session.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		watch bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "serve [graph.json]",
		Short: "Serve a layout session over HTTP",
		Long: `Serve a layout session over HTTP.

The serve command computes a layout and keeps the session live behind a
JSON API: read the geometry, fetch single elements, and expand summary
nodes incrementally with POST /api/v1/layout/expand.

With --watch the graph file is monitored and the session is recomputed
whenever it changes, so a front-end can poll its way through edits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			mergeEngineConfig(cmd, &opts, cfg.Engine)
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Serve.Addr
			}
			return c.runServe(cmd.Context(), args[0], opts, addr, watch)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&watch, "watch", false, "recompute the session when the graph file changes")

	// Engine flags
	engineFlags(cmd, &opts)

	return cmd
}

// runServe computes the initial session and serves it until the context
// is canceled.
func (c *CLI) runServe(ctx context.Context, input string, opts pipeline.Options, addr string, watch bool) error {
	g, store, alg, err := c.computeSession(ctx, input, opts)
	if err != nil {
		return err
	}

	srv := api.New(g, store, alg, c.Logger)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
	}

	if watch {
		go c.watchGraph(ctx, input, opts, srv)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	printSuccess("Serving %s", input)
	printKeyValue("Address", "http://"+addr)
	printKeyValue("Strategy", alg.Name())
	printStats(store.NodeCount(), store.EdgeCount(), false)
	printNewline()
	printDetail("GET  /api/v1/layout")
	printDetail("POST /api/v1/layout/expand  {\"index\": N}")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	c.Logger.Info("server stopped")
	return nil
}

// computeSession loads the graph and computes the layout a session
// starts from, leaving the strategy bound for incremental expands.
func (c *CLI) computeSession(ctx context.Context, path string, opts pipeline.Options) (*prov.Graph, *layout.Store, engine.Algorithm, error) {
	g, err := prov.ReadGraphFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load graph %s: %w", path, err)
	}

	alg, err := engine.New(engine.Options{
		Strategy: opts.Strategy,
		Tool:     opts.Tool,
		ToolPath: opts.ToolPath,
		Workers:  opts.Workers,
		Zoom:     opts.Zoom,
		Logger:   c.Logger,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := alg.Initialize(ctx, g, opts.Depth)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compute layout: %w", err)
	}
	return g, store, alg, nil
}

// watchGraph reloads the session whenever the graph file changes.
// Editors replace files rather than writing them in place, so the parent
// directory is watched and events are filtered by name.
func (c *CLI) watchGraph(ctx context.Context, path string, opts pipeline.Options, srv *api.Server) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.Logger.Warn("watch disabled", "err", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		c.Logger.Warn("watch disabled", "dir", filepath.Dir(path), "err", err)
		return
	}
	name := filepath.Base(path)
	c.Logger.Info("watching", "path", path)

	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(watchDebounce, func() {
				c.reloadSession(ctx, path, opts, srv)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.Logger.Warn("watch error", "err", err)
		}
	}
}

// reloadSession recomputes the session and swaps it into the server.
// Failures keep the old session serving.
func (c *CLI) reloadSession(ctx context.Context, path string, opts pipeline.Options, srv *api.Server) {
	if ctx.Err() != nil {
		return
	}

	p := newProgress(c.Logger)
	g, store, alg, err := c.computeSession(ctx, path, opts)
	if err != nil {
		c.Logger.Warn("reload failed, keeping previous session", "err", err)
		return
	}
	srv.Reload(g, store, alg)
	p.done("Recomputed layout")
}
