package cli

import (
	"os"

	"github.com/spf13/cobra"

	"pysymbols/internal/merge"
)

var (
	mergePath    string
	mergeNoPatch bool
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge multiple API inventory files into one",
	Long: `Merge folds every per-version JSON inventory in a directory into a
single JSON object keyed by version, written to standard output.

With --no-patch the patch component of each version is discarded, so all
patch releases of one minor line share a key; the lexicographically first
file wins and later ones are reported as collisions.`,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVar(&mergePath, "path", "data", "directory of gathered inventory files")
	mergeCmd.Flags().BoolVar(&mergeNoPatch, "no-patch", false, "discard patch release information")
}

func runMerge(cmd *cobra.Command, args []string) error {
	sink := newSink()

	result, err := merge.Merge(mergePath, mergeNoPatch, sink)
	if err != nil {
		return err
	}
	return result.Encode(os.Stdout)
}
