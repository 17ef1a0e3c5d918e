package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gnana997/propdoc/pkg/docpage"
	"github.com/gnana997/propdoc/pkg/metadata"
	"github.com/gnana997/propdoc/pkg/util"
)

func newRenderCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the API section and story args of every component",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
				workers:  util.GetOptimalPoolSizeWithOverride(workers),
				logger:   a.logger,
			}
			written, err := out.renderAll(cmd.Context(), qs.Set.Components)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "rendered %d components to %s\n", written, a.cfg.OutDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&a.flags.OutDir, "out", "", "output directory (overrides out_dir)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent renders (default: derived from CPU count)")
	return cmd
}

// renderOutput writes <id>.html and <id>.args.json per component into dir.
type renderOutput struct {
	dir      string
	renderer *docpage.Renderer
	workers  int
	logger   *slog.Logger
}

// renderAll renders comps concurrently and returns how many were written.
// The first failure cancels the remaining renders.
func (o renderOutput) renderAll(ctx context.Context, comps []metadata.ComponentMetadata) (int, error) {
	if err := os.MkdirAll(o.dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.workers, 1))
	for i := range comps {
		comp := &comps[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return o.renderOne(comp)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(comps), nil
}

func (o renderOutput) renderOne(comp *metadata.ComponentMetadata) error {
	page, err := o.renderer.BuildPage(comp)
	if err != nil {
		return err
	}

	var html bytes.Buffer
	if err := o.renderer.RenderPage(&html, page); err != nil {
		return err
	}

	htmlPath := filepath.Join(o.dir, page.ID+".html")
	if err := os.WriteFile(htmlPath, html.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", htmlPath, err)
	}
	argsPath := filepath.Join(o.dir, page.ID+metadata.ArgsFileSuffix)
	if err := os.WriteFile(argsPath, []byte(page.StoryArgs+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", argsPath, err)
	}

	o.logger.Debug("component rendered", "component", comp.DisplayName, "id", page.ID)
	return nil
}
