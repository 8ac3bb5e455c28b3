package main

import (
	"os"

	"github.com/spf13/cobra"
)

const programName = "flightsurety"

var configFile string

// main wires the command tree. Business logic lives in internal packages;
// commands only assemble them.
func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Flight delay insurance ledger",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(keysCommand())
	rootCmd.AddCommand(tokenCommand())

	if err := rootCmd.Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
