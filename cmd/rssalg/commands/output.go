package commands

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rssalg/rssalg/errors"
	"github.com/rssalg/rssalg/progress"
)

// Output formats accepted by --format
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// verbosity returns the -v count of the invocation
func verbosity(cmd *cobra.Command) int {
	v, _ := cmd.Flags().GetCount("verbose")
	return v
}

// jsonOutput reports whether --json was given
func jsonOutput(cmd *cobra.Command) bool {
	j, _ := cmd.Flags().GetBool("json")
	return j
}

// newEmitter picks the progress emitter for the invocation
func newEmitter(cmd *cobra.Command) progress.Emitter {
	if jsonOutput(cmd) {
		return progress.NewJSONEmitterTo(cmd.OutOrStdout())
	}
	return progress.NewCLIEmitterTo(cmd.OutOrStdout(), verbosity(cmd))
}

// outputFormat resolves --format, with --json as a shorthand for json
func outputFormat(cmd *cobra.Command) (string, error) {
	format := FormatTable
	if f := cmd.Flags().Lookup("format"); f != nil {
		format = strings.ToLower(f.Value.String())
	}
	if jsonOutput(cmd) {
		format = FormatJSON
	}
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
		return format, nil
	}
	return "", errors.WithHint(
		errors.Newf("unknown output format %q", format),
		"use table, json or yaml",
	)
}

// encode writes v as indented JSON or YAML
func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "failed to encode JSON")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "failed to encode YAML")
		}
		return errors.Wrap(enc.Close(), "failed to encode YAML")
	}
	return errors.Newf("format %q cannot encode values", format)
}
