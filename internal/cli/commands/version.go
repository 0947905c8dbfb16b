package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set at build time:
//
//	go build -ldflags "-X github.com/ccollicutt/mmwrtab/internal/cli/commands.Version=v0.3.0 \
//	  -X github.com/ccollicutt/mmwrtab/internal/cli/commands.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/ccollicutt/mmwrtab/internal/cli/commands.BuildDate=$(date -u +%Y-%m-%d)" ./cmd/cli
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// VersionString is the one-line version shown by `mmwrtab version` and
// `mmwrtab --version`.
func VersionString() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s)", Version, Commit, BuildDate, runtime.Version())
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the mmwrtab version, the commit and date it was built from, and the Go version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mmwrtab %s\n", VersionString())
		},
	}
}
