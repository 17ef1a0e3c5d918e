package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/propdoc/pkg/metadata"
	"github.com/gnana997/propdoc/pkg/util"
	"github.com/gnana997/propdoc/pkg/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Render all components, then re-render the ones whose metadata changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

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
			out := renderOutput{
				dir:      a.cfg.OutDir,
				renderer: r,
				workers:  util.GetOptimalPoolSize(),
				logger:   a.logger,
			}
			written, err := out.renderAll(ctx, qs.Set.Components)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "rendered %d components to %s, watching %s\n", written, a.cfg.OutDir, a.cfg.MetadataRoot)

			w, err := watch.New(loader, a.watchOptions(), a.logger)
			if err != nil {
				return err
			}
			defer w.Stop()
			if err := w.Start(a.cfg.MetadataRoot, rerenderHandler(ctx, a, out)); err != nil {
				return err
			}

			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&a.flags.OutDir, "out", "", "output directory (overrides out_dir)")
	return cmd
}

// rerenderHandler re-renders the components of each changed file.
func rerenderHandler(ctx context.Context, a *app, out renderOutput) watch.Handler {
	return watch.Handler{
		OnChange: func(path string, set *metadata.Set) {
			n, err := out.renderAll(ctx, set.Components)
			if err != nil {
				a.logger.Error("re-render failed", "file", path, "error", err)
				return
			}
			a.logger.Info("re-rendered", "file", path, "components", n)
		},
		OnRemove: func(path string) {
			a.logger.Info("metadata file removed; rendered output is left in place", "file", path)
		},
		OnError: func(path string, err error) {
			a.logger.Warn("metadata file is invalid", "file", path, "error", err)
		},
	}
}
