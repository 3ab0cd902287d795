package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strogmv/moderr/compiler"
)

type explainEntry struct {
	Stage       compiler.Stage
	Title       string
	Description string
}

var explanations = map[string]explainEntry{
	compiler.ErrCodeInputDetect: {
		Stage:       compiler.StageParse,
		Title:       "Unrecognized definition path",
		Description: "A path must be a directory holding a CUE package, a .cue file or a .yaml/.yml file.",
	},
	compiler.ErrCodeCUELoad: {
		Stage:       compiler.StageParse,
		Title:       "CUE package failed to load",
		Description: "The CUE loader could not build the package. The message carries the file and position of the first error.",
	},
	compiler.ErrCodeCUESchema: {
		Stage:       compiler.StageParse,
		Title:       "Definition does not match the module schema",
		Description: "The value under the top-level \"module\" field must unify with #Module: a name, an optional package, generics, where bounds and an error type.",
	},
	compiler.ErrCodeCUENormalize: {
		Stage:       compiler.StageParse,
		Title:       "CUE definition could not be normalized",
		Description: "The definition is valid CUE but a variant or field type could not be read, e.g. an unknown primitive or a malformed [N]u8 array.",
	},
	compiler.ErrCodeYAMLRead: {
		Stage:       compiler.StageParse,
		Title:       "YAML file could not be read",
		Description: "The file does not exist or is not readable.",
	},
	compiler.ErrCodeYAMLNormalize: {
		Stage:       compiler.StageParse,
		Title:       "YAML definition could not be normalized",
		Description: "The document needs a top-level \"module\" key holding the same structure as the CUE form.",
	},
	compiler.ErrCodeDuplicateInput: {
		Stage:       compiler.StageParse,
		Title:       "Module defined twice",
		Description: "Two inputs declare a module with the same name. Each module is generated exactly once.",
	},
	compiler.ErrCodeIRValidate: {
		Stage:       compiler.StageIR,
		Title:       "Definition failed semantic validation",
		Description: "Names must be identifiers, variant names unique and not starting with __, fields of a fixed size and type parameters constrained. Every problem is listed.",
	},
	compiler.ErrCodeTransformerApply: {
		Stage:       compiler.StageTransform,
		Title:       "Augmentation failed",
		Description: "A transformer rejected the definition while adding the sentinel variant and generation directives.",
	},
	compiler.ErrCodeEmitterOptions: {
		Stage:       compiler.StageEmit,
		Title:       "Invalid emitter options",
		Description: "The package override must be a lowercase Go identifier and every template must parse.",
	},
	compiler.ErrCodeEmitterStep: {
		Stage:       compiler.StageEmit,
		Title:       "Generation step failed",
		Description: "A fragment of the generated file could not be rendered, or two modules would write the same file.",
	},
	compiler.ErrCodeEmitterFormat: {
		Stage:       compiler.StageEmit,
		Title:       "Generated source does not parse",
		Description: "The rendered file was rejected by the Go formatter. This is a generator bug; run with --log-level debug and report the definition.",
	},
	compiler.ErrCodeEmitterWrite: {
		Stage:       compiler.StageEmit,
		Title:       "Output could not be written",
		Description: "The output directory could not be created or a generated file could not be written.",
	},
	errCodeConfig: {
		Stage:       stageConfig,
		Title:       "Invalid configuration",
		Description: "The config file or a MODERR_* variable holds a value out of range, e.g. an unknown log level or an error budget outside 1..255.",
	},
}

func newExplainCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [CODE]",
		Short: "Describe a pipeline error code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				codes := make([]string, 0, len(explanations))
				for code := range explanations {
					codes = append(codes, code)
				}
				sort.Strings(codes)
				for _, code := range codes {
					fmt.Fprintf(c.stdout, "%-26s %s\n", code, explanations[code].Title)
				}
				return nil
			}

			code := strings.ToUpper(strings.TrimSpace(args[0]))
			entry, ok := explanations[code]
			if !ok {
				return fmt.Errorf("unknown error code %q", code)
			}
			fmt.Fprintf(c.stdout, "[%s:%s] %s\n\n%s\n", entry.Stage, code, entry.Title, entry.Description)
			return nil
		},
	}
}
