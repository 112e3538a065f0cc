package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Long:        "Print the docqa version. With --verbose, also print the Go version, platform and VCS revision.",
	Annotations: map[string]string{annotationNoServices: "true"},
	Args:        cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("docqa version %s\n", version)
		if verbose {
			for _, line := range buildDetails(debug.ReadBuildInfo) {
				cmd.Println("  " + line)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildDetails lists the toolchain, platform and any VCS settings stamped
// into the binary.
func buildDetails(read func() (*debug.BuildInfo, bool)) []string {
	lines := []string{
		"go: " + runtime.Version(),
		"platform: " + runtime.GOOS + "/" + runtime.GOARCH,
	}
	info, ok := read()
	if !ok {
		return lines
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.time", "vcs.modified":
			lines = append(lines, s.Key+": "+s.Value)
		}
	}
	return lines
}
