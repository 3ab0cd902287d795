package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strogmv/moderr/compiler"
)

func TestFormatStageFailureSnapshot(t *testing.T) {
	got := formatStageFailure(
		"Build FAILED",
		compiler.StageParse,
		compiler.ErrCodeCUELoad,
		"load balances.cue",
		errors.New("boom"),
	)

	want, err := os.ReadFile(filepath.Join("testdata", "cli_error_snapshot.txt"))
	require.NoError(t, err)
	assert.Equal(t, string(want), got+"\n")
}

func TestFormatFailureKeepsPipelineTag(t *testing.T) {
	err := compiler.WrapContractError(compiler.StageIR, compiler.ErrCodeIRValidate, "validate Sudo", errors.New("bad"))
	assert.Equal(t, "Validation FAILED: [IR:IR_VALIDATE_ERROR] validate Sudo: bad", formatFailure("Validation FAILED", err))
}

func TestPrintStageFailureWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	printStageFailure(&buf, true, "Build FAILED: boom")
	assert.Equal(t, "Build FAILED: boom\n", buf.String())
}

func TestEveryStableCodeIsExplained(t *testing.T) {
	for _, code := range compiler.StableErrorCodes {
		entry, ok := explanations[code]
		if assert.Truef(t, ok, "code %s has no explanation", code) {
			assert.NotEmpty(t, entry.Title, code)
			assert.NotEmpty(t, entry.Stage, code)
		}
	}
}
