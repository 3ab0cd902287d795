package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/strogmv/moderr/compiler"
)

func newValidateCmd(c *cli) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Check module definitions without generating code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			res, err := compiler.LoadModulesWithOptions(compiler.PipelineOptions{
				ModuleErrorBudget: c.cfg.ErrorBudget,
			}, args...)
			c.record(len(res.Modules), 0, res.Diagnostics, time.Since(started), err)
			if err != nil {
				c.fail(formatFailure("Validation FAILED", err))
				return err
			}

			for _, w := range res.Diagnostics {
				c.warn("%s: %s [%s]", w.Module, w.Message, w.Code)
			}
			if strict && len(res.Diagnostics) > 0 {
				err := compiler.WrapContractError(compiler.StageIR, compiler.ErrCodeIRValidate, "strict validate",
					errWarningsAsErrors(len(res.Diagnostics)))
				c.fail(formatFailure("Validation FAILED", err))
				return err
			}
			for _, m := range res.Modules {
				c.success("%s: ok", m.Name)
			}
			return nil
		},
	}
	cmd.Flags().Int("error-budget", 0, "byte budget of the static size warning")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}
