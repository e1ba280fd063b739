package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rssalg/rssalg/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show rssalg version information",
	Long:  `Display version, build time, commit hash, and platform information for the rssalg binary.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()

		if jsonOutput(cmd) {
			return encode(cmd.OutOrStdout(), FormatJSON, info)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, info.String())
		fmt.Fprintf(w, "Platform: %s\n", info.Platform)
		fmt.Fprintf(w, "Go: %s\n", info.GoVersion)
		return nil
	},
}
