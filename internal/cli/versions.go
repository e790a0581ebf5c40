package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pysymbols/internal/config"
	"pysymbols/internal/pypi"
)

var versionsPackage string

// versionsCmd represents the versions command
var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the releases available on the package index",
	RunE:  runVersions,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.Flags().StringVar(&versionsPackage, "package", "", "package name (default from config)")
}

func runVersions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if versionsPackage != "" {
		cfg.Package = versionsPackage
	}

	client := pypi.NewClient(cfg.IndexURL, newSink())
	versions, err := client.Versions(context.Background(), cfg.Package)
	if err != nil {
		return err
	}

	for _, v := range versions {
		fmt.Println(v)
	}
	return nil
}
