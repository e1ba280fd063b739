package commands

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rssalg/rssalg/algorithm"
	"github.com/rssalg/rssalg/classification"
	"github.com/rssalg/rssalg/settings"
	"github.com/rssalg/rssalg/splitter"
)

// SettingsCmd inspects the configuration of a properties folder
var SettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect experiment configuration",
	Long: `Inspect the configuration read from a properties folder after defaults
and RSSALG_* environment overrides are applied.

Examples:
  rssalg settings show ./properties experiment_L.properties
  rssalg settings show ./properties experiment_L.properties --format json
  rssalg settings list`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show <properties_folder> <experiment_properties>",
	Short: "Show the effective configuration",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsShow,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available algorithms, splitters and measures",
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

func init() {
	SettingsCmd.AddCommand(settingsShowCmd)
	SettingsCmd.AddCommand(settingsListCmd)
	settingsShowCmd.Flags().StringP("format", "f", FormatYAML, "Output format: yaml or json")
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	s, err := settings.Load(args[0], args[1])
	if err != nil {
		return err
	}

	if format == FormatTable {
		format = FormatYAML
	}
	if err := encode(cmd.OutOrStdout(), format, s); err != nil {
		return err
	}
	if format != FormatYAML {
		return nil
	}

	props := s.Properties()
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(cmd.OutOrStdout(), "# Results.xml group:")
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "#   %s = %s\n", k, props[k])
	}
	return nil
}

func runSettingsList(cmd *cobra.Command, args []string) error {
	available := map[string][]string{
		"algorithms": algorithm.List(),
		"splitters":  append([]string{splitter.None}, splitter.List()...),
		"measures":   classification.MeasureNames(),
	}
	if jsonOutput(cmd) {
		return encode(cmd.OutOrStdout(), FormatJSON, available)
	}

	w := cmd.OutOrStdout()
	for _, kind := range []string{"algorithms", "splitters", "measures"} {
		fmt.Fprintln(w, pterm.Bold.Sprint(kind))
		for _, name := range available[kind] {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	return nil
}
