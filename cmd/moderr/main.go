package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/strogmv/moderr/compiler"
	"github.com/strogmv/moderr/internal/config"
	"github.com/strogmv/moderr/internal/pkg/logger"
)

// cli carries the state shared by every subcommand once the root command's
// pre-run has resolved configuration.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	cfg        *config.Config
	log        *slog.Logger
	runID      string
}

func main() {
	if err := execute(context.Background(), newRootCmd(os.Stdout, os.Stderr)); err != nil {
		os.Exit(1)
	}
}

// execute runs root under the trace exported in TRACEPARENT, if any.
func execute(ctx context.Context, root *cobra.Command) error {
	return root.ExecuteContext(logger.WithTraceParent(ctx, os.Getenv("TRACEPARENT")))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "moderr",
		Short: "Generate dispatch error types for runtime modules",
		Long: `moderr reads module definitions written in CUE or YAML and generates
the Go error enum of each module: a sealed variant set with a compact binary
codec, a type descriptor, a compactness self-test and the conversion into the
runtime's module error envelope.`,
		Version:       compiler.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.String("log-format", "", "log format (text|json)")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("metrics-file", "", "write run metrics to this file in Prometheus text format")

	root.AddCommand(
		newBuildCmd(c),
		newValidateCmd(c),
		newInspectCmd(c),
		newExplainCmd(c),
		newVersionCmd(c),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		c.fail(formatStageFailure("Configuration FAILED", stageConfig, errCodeConfig, "load config", err))
		return err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		c.fail(formatStageFailure("Configuration FAILED", stageConfig, errCodeConfig, "apply flags", err))
		return err
	}
	if err := cfg.Validate(); err != nil {
		c.fail(formatStageFailure("Configuration FAILED", stageConfig, errCodeConfig, "validate config", err))
		return err
	}

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat, c.stderr)
	if err != nil {
		c.fail(formatStageFailure("Configuration FAILED", stageConfig, errCodeConfig, "init logger", err))
		return err
	}

	c.cfg = cfg
	c.runID = uuid.NewString()
	c.log = log.With("run_id", c.runID)
	return nil
}

// applyFlags copies every flag the user set explicitly onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	overrides := []struct {
		name string
		set  func() error
	}{
		{"log-level", func() (err error) { cfg.LogLevel, err = flags.GetString("log-level"); return }},
		{"log-format", func() (err error) { cfg.LogFormat, err = flags.GetString("log-format"); return }},
		{"no-color", func() (err error) { cfg.NoColor, err = flags.GetBool("no-color"); return }},
		{"metrics-file", func() (err error) { cfg.MetricsFile, err = flags.GetString("metrics-file"); return }},
		{"output", func() (err error) { cfg.OutputDir, err = flags.GetString("output"); return }},
		{"package", func() (err error) { cfg.Package, err = flags.GetString("package"); return }},
		{"dispatch-import", func() (err error) { cfg.DispatchImport, err = flags.GetString("dispatch-import"); return }},
		{"templates-dir", func() (err error) { cfg.TemplatesDir, err = flags.GetString("templates-dir"); return }},
		{"error-budget", func() (err error) { cfg.ErrorBudget, err = flags.GetInt("error-budget"); return }},
	}
	for _, o := range overrides {
		f := flags.Lookup(o.name)
		if f == nil || !f.Changed {
			continue
		}
		if err := o.set(); err != nil {
			return fmt.Errorf("flag --%s: %w", o.name, err)
		}
	}
	return nil
}
