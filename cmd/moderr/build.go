package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/strogmv/moderr/compiler"
	"github.com/strogmv/moderr/compiler/emitter"
	"github.com/strogmv/moderr/compiler/normalizer"
	"github.com/strogmv/moderr/internal/metrics"
	"github.com/strogmv/moderr/internal/pkg/logger"
)

func newBuildCmd(c *cli) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "build <path>...",
		Short: "Generate the error types of one or more module definitions",
		Long: `build loads every definition (a CUE package directory, a .cue file or a
YAML file), augments its error type and writes one Go file per module into
the output directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd, args, dryRun)
		},
	}
	f := cmd.Flags()
	f.StringP("output", "o", "", "output directory (default from config, \".\")")
	f.String("package", "", "override the package clause of generated files")
	f.String("dispatch-import", "", "import path of the dispatch runtime package")
	f.String("templates-dir", "", "directory of *.tmpl files overriding the built-in templates")
	f.Int("error-budget", 0, "byte budget of the static size warning")
	f.BoolVar(&dryRun, "dry-run", false, "render files without writing them")
	return cmd
}

func (c *cli) runBuild(cmd *cobra.Command, paths []string, dryRun bool) error {
	log := logger.From(cmd.Context()).With("run_id", c.runID, "cmd", "build")
	started := time.Now()

	opts := emitter.BuildOptions{
		Emitter: emitter.Options{
			OutputDir:      c.cfg.OutputDir,
			Package:        c.cfg.Package,
			DispatchImport: c.cfg.DispatchImport,
			TemplatesDir:   c.cfg.TemplatesDir,
			Logger:         log,
		},
		Pipeline: compiler.PipelineOptions{
			ModuleErrorBudget: c.cfg.ErrorBudget,
			WarningSink: func(w normalizer.Warning) {
				log.Warn(w.Message, "code", w.Code, "module", w.Module, "file", w.File, "line", w.Line)
			},
		},
		DryRun: dryRun,
	}

	res, err := emitter.Build(paths, opts)
	c.record(len(res.Modules), len(res.Files), res.Diagnostics, time.Since(started), err)
	if err != nil {
		c.fail(formatFailure("Build FAILED", err))
		return err
	}

	for _, f := range res.Files {
		if dryRun {
			c.success("would write %s (%d bytes)", f.Path, len(f.Content))
			continue
		}
		c.success("wrote %s", f.Path)
	}
	log.Info("build finished", "modules", len(res.Modules), "files", len(res.Files), "dry_run", dryRun,
		"elapsed", time.Since(started).String())
	return nil
}

// record writes the run metrics when a metrics file is configured. A failure
// to write them is logged and does not fail the run.
func (c *cli) record(modules, files int, warnings []normalizer.Warning, elapsed time.Duration, runErr error) {
	if c.cfg.MetricsFile == "" {
		return
	}
	m := metrics.NewBuildMetrics()
	m.Observe(modules, files, warnings, elapsed, runErr)
	if err := m.WriteTextfile(c.cfg.MetricsFile); err != nil {
		c.log.Error("write metrics", "path", c.cfg.MetricsFile, "error", err)
	}
}
