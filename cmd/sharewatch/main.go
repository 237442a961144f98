// Sharewatch discovers SMB file shares on the local network and keeps
// track of whether they are reachable.
//
// It provides mDNS-based share discovery, per-share connection status
// checks, a saved-share registry, an interactive watch screen, and a
// small HTTP/WebSocket server for dashboards.
//
// Usage:
//
//	sharewatch [command] [flags]
//
// Running without arguments launches the interactive watch screen.
// See 'sharewatch --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/sharewatch/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sharewatch",
	Short: "LAN file share discovery and status tracking",
	Long: `Sharewatch finds SMB file shares on your local network and tracks
whether they are reachable.

Shares are discovered over mDNS, enumerated over SMB, and can be
pinned to a saved list with optional credentials (passwords are never
stored). The watch screen shows everything live.

If no command is specified, the interactive watch screen launches.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the watch screen when no subcommand given
		return runWatch(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sharewatch %s (commit: %s)\n", version.Version, version.Commit)
	},
}
