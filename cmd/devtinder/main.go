// Devtinder is a terminal client for the DevTinder matching API.
//
// Run without arguments it starts the interactive TUI. Subcommands expose the
// same operations for scripting:
//
//	devtinder login --email ada@devtinder.local
//	devtinder feed
//	devtinder feed interested <user-id>
//	devtinder requests accept <user-id>
//	devtinder profile view
//	devtinder logout
//
// Configuration is read from ~/.config/devtinder/config.yaml and overridden
// by DEVTINDER_* environment variables (DEVTINDER_API_BASE_URL, ...).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	serverURL  string
	jsonOut    bool

	// version is set via ldflags during build
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "devtinder",
	Short:   "Terminal client for DevTinder",
	Long:    "devtinder is a terminal client for the DevTinder matching API.\nWithout a subcommand it starts the interactive TUI.",
	Version: version,
	RunE:    runTUI,
	// The TUI owns the terminal; silence cobra's own error echo.
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/devtinder/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
