package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/strogmv/moderr/compiler"
)

type versionPayload struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`
	Go      string `json:"go"`
}

func newVersionCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the generator version",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := versionPayload{Tool: "moderr", Version: compiler.Version, Go: runtime.Version()}
			switch format {
			case "json":
				enc := json.NewEncoder(c.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			case "pretty", "":
				fmt.Fprintf(c.stdout, "%s %s (%s)\n", payload.Tool, payload.Version, payload.Go)
				return nil
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}
