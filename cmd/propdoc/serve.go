package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/propdoc/pkg/mcp"
	"github.com/gnana997/propdoc/pkg/mcplog"
	"github.com/gnana997/propdoc/pkg/metadata"
	"github.com/gnana997/propdoc/pkg/watch"
)

func newServeCmd(a *app) *cobra.Command {
	var watchFiles bool
	var mcpLogPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			loader := a.newLoader()
			defer loader.Close()

			qs, err := a.loadQuery(loader)
			if err != nil {
				return err
			}
			r, err := a.newRenderer()
			if err != nil {
				return err
			}

			if mcpLogPath == "" {
				mcpLogPath = a.cfg.MCPLogPath
			}
			callLog, err := mcplog.NewLogger(mcpLogPath)
			if err != nil {
				return err
			}
			if callLog != nil {
				defer callLog.Close()
			}

			srv, err := mcpserver.NewServer(qs, r, mcpserver.Config{
				CacheSize: a.cfg.CacheSize,
				CallLog:   callLog,
				Logger:    a.logger,
			})
			if err != nil {
				return err
			}

			if watchFiles {
				w, err := watch.New(loader, a.watchOptions(), a.logger)
				if err != nil {
					return err
				}
				defer w.Stop()
				if err := w.Start(a.cfg.MetadataRoot, reloadHandler(a, loader, srv)); err != nil {
					return err
				}
			}

			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watchFiles, "watch", false, "reload metadata when files change")
	cmd.Flags().StringVar(&mcpLogPath, "mcp-log", "", "append tool calls as JSONL to this file (overrides mcp_log_path)")
	return cmd
}

func (a *app) watchOptions() watch.Options {
	opts := watch.DefaultOptions()
	opts.Discover = a.cfg.discoverConfig()
	return opts
}

// reloadHandler reloads the whole metadata root on any change and swaps it
// into srv. A root that no longer loads keeps the previous metadata.
func reloadHandler(a *app, loader *metadata.Loader, srv *mcpserver.Server) watch.Handler {
	var mu sync.Mutex
	reload := func(path string) {
		mu.Lock()
		defer mu.Unlock()

		qs, err := a.loadQuery(loader)
		if err != nil {
			a.logger.Warn("reload failed, keeping previous metadata", "file", path, "error", err)
			return
		}
		srv.Reload(qs)
	}

	return watch.Handler{
		OnChange: func(path string, _ *metadata.Set) { reload(path) },
		OnRemove: reload,
		OnError: func(path string, err error) {
			a.logger.Warn("metadata file is invalid, keeping previous metadata", "file", path, "error", err)
		},
	}
}
