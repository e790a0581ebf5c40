// Package cli wires the gather and merge pipelines into the pysymbols
// command-line tool.
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pysymbols/internal/diag"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pysymbols",
	Short: "Gather and merge the public API symbols of Python package releases",
	Long: `pysymbols builds an inventory of the publicly reachable symbols a
versioned Python package exposes, one JSON file per release, and merges
many per-release inventories into a single consolidated dataset.

Symbols are extracted statically: each source file below the package's
API directory is parsed and every name bound by an import statement is
recorded under the dotted module path the file represents.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.pysymbols.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "echo debug-level diagnostics")
}

// newSink builds the run's diagnostics sink, echoing to stderr at the
// level the --verbose flag selects.
func newSink() *diag.Sink {
	level := diag.LevelInfo
	if verbose {
		level = diag.LevelDebug
	}
	return diag.NewSink(log.New(os.Stderr, "", log.LstdFlags), level)
}
