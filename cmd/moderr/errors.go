package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/strogmv/moderr/compiler"
)

const (
	stageConfig   compiler.Stage = "CONFIG"
	errCodeConfig                = "CONFIG_ERROR"
)

func formatStageFailure(prefix string, stage compiler.Stage, code, op string, err error) string {
	return fmt.Sprintf("%s: %v", prefix, compiler.WrapContractError(stage, code, op, err))
}

// formatFailure reports an error the pipeline already tagged with its stage.
func formatFailure(prefix string, err error) string {
	return fmt.Sprintf("%s: %v", prefix, err)
}

func printStageFailure(w io.Writer, noColor bool, msg string) {
	c := color.New(color.FgRed, color.Bold)
	if noColor {
		c.DisableColor()
	}
	c.Fprintln(w, msg)
}

func (c *cli) fail(msg string) {
	noColor := c.cfg != nil && c.cfg.NoColor
	printStageFailure(c.stderr, noColor, msg)
}

func (c *cli) success(format string, args ...any) {
	g := color.New(color.FgGreen)
	if c.cfg != nil && c.cfg.NoColor {
		g.DisableColor()
	}
	g.Fprintf(c.stdout, format+"\n", args...)
}

func (c *cli) warn(format string, args ...any) {
	y := color.New(color.FgYellow)
	if c.cfg != nil && c.cfg.NoColor {
		y.DisableColor()
	}
	y.Fprintf(c.stderr, format+"\n", args...)
}

func errWarningsAsErrors(n int) error {
	return fmt.Errorf("%d warning(s) reported with --strict", n)
}
