package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/abhisek/drillz/internal/content"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version and the course bundle format it reads",
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		return writeVersion(cmd.OutOrStdout(), short)
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print the version number only")
}

// buildVersion prefers the ldflags value and falls back to the module
// version recorded by go install.
func buildVersion() string {
	if version != "(devel)" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return version
}

func writeVersion(w io.Writer, short bool) error {
	v := buildVersion()
	if short {
		_, err := fmt.Fprintln(w, v)
		return err
	}
	_, err := fmt.Fprintf(w, "drillz %s\n  bundle format: %s.x\n  go: %s %s/%s\n",
		v, content.SupportedMajor, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}
