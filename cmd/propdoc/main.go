package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnana997/propdoc/pkg/docpage"
	"github.com/gnana997/propdoc/pkg/metadata"
	"github.com/gnana997/propdoc/pkg/util"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "propdoc: %v\n", err)
		os.Exit(1)
	}
}

// app carries the resolved configuration shared by every command.
type app struct {
	configPath string
	flags      overrides

	cfg    *ProjectConfig
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "propdoc",
		Short:         "Component API docs and story args from prop metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", defaultConfigPath, "path to the project config file")
	pf.StringVar(&a.flags.MetadataRoot, "root", "", "metadata root directory (overrides metadata_root)")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.flags.LogFormat, "log-format", "", "log format: json, text")

	root.AddCommand(
		newArgsCmd(a),
		newRenderCmd(a),
		newInspectCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newVersionCmd(a),
	)
	return root
}

// init resolves the configuration (flag > file > default) and the logger.
func (a *app) init() error {
	cfg, err := loadProjectConfig(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.apply(a.flags); err != nil {
		return err
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = util.NewLogger(cfg.loggerConfig(a.stderr))
	util.SetDefault(a.logger)
	return nil
}

// loadQuery loads every metadata file under the configured root.
func (a *app) loadQuery(loader *metadata.Loader) (*metadata.QueryService, error) {
	set, idx, err := loader.LoadDir(a.cfg.MetadataRoot, a.cfg.discoverConfig())
	if err != nil {
		return nil, err
	}
	a.logger.Info("metadata loaded", "root", a.cfg.MetadataRoot, "components", len(set.Components))
	return metadata.NewQueryService(set, idx), nil
}

func (a *app) newLoader() *metadata.Loader {
	return metadata.NewLoader(nil, a.logger)
}

func (a *app) newRenderer() (*docpage.Renderer, error) {
	r, err := docpage.NewRenderer(a.cfg.renderOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return r, nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		// No config is needed to print the version.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.stdout, "propdoc %s\n", version)
		},
	}
}
