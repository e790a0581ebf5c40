package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"pysymbols/internal/config"
	"pysymbols/internal/diag"
	"pysymbols/internal/extract"
	"pysymbols/internal/pypi"
)

var (
	gatherPackage  string
	gatherVersions string
	gatherIndexURL string
	gatherOutput   string
	gatherQuiet    bool
)

// gatherCmd represents the gather command
var gatherCmd = &cobra.Command{
	Use:   "gather",
	Short: "Gather symbols available in package releases",
	Long: `Gather downloads the requested releases from the package index,
extracts each wheel, parses every source file below the package's API
directory, and writes one sorted JSON array of fully qualified symbols
per version to the output directory.

A release with no platform-qualified wheel is skipped with an error
diagnostic. The run fails only when no requested release could be
gathered.

Examples:
  # Gather three TensorFlow releases
  pysymbols gather --versions 2.3.0,2.4.0,2.4.1

  # Gather every release on the index
  pysymbols gather --versions all`,
	RunE: runGather,
}

func init() {
	rootCmd.AddCommand(gatherCmd)
	gatherCmd.Flags().StringVar(&gatherPackage, "package", "", "package name (default from config)")
	gatherCmd.Flags().StringVar(&gatherVersions, "versions", "all", "comma-separated version list, or \"all\"")
	gatherCmd.Flags().StringVar(&gatherIndexURL, "index-url", "", "package index JSON API URL (default from config)")
	gatherCmd.Flags().StringVar(&gatherOutput, "output", "", "output directory (default from config)")
	gatherCmd.Flags().BoolVarP(&gatherQuiet, "quiet", "q", false, "disable progress bars")
}

func runGather(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling gather...")
		cancel()
	}()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if gatherPackage != "" {
		cfg.Package = gatherPackage
	}
	if gatherIndexURL != "" {
		cfg.IndexURL = gatherIndexURL
	}
	if gatherOutput != "" {
		cfg.OutputDir = gatherOutput
	}

	sink := newSink()
	client := pypi.NewClient(cfg.IndexURL, sink)

	versions, err := resolveVersions(ctx, client, cfg.Package, gatherVersions)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return fmt.Errorf("no versions to gather for %s", cfg.Package)
	}

	locator, err := extract.NewLocator(cfg.SourcePattern)
	if err != nil {
		return err
	}
	gatherer := extract.NewGatherer(locator, sink, extract.GatherOptions{
		IgnoreErrors: true,
		Progress:     !gatherQuiet,
		PathPrefix:   cfg.APIDir,
	})

	gathered := 0
	for _, version := range versions {
		if ctx.Err() != nil {
			return fmt.Errorf("gather cancelled")
		}
		if err := gatherVersion(ctx, client, gatherer, cfg, sink, version); err != nil {
			sink.Error("gather failed for version", diag.Fields{
				"version": version,
				"error":   err.Error(),
			})
			continue
		}
		gathered++
	}

	if gathered == 0 {
		return fmt.Errorf("no versions of %s could be gathered", cfg.Package)
	}
	sink.Info("gather complete", diag.Fields{
		"gathered":  fmt.Sprintf("%d", gathered),
		"requested": fmt.Sprintf("%d", len(versions)),
	})
	return nil
}

// gatherVersion materializes one release and writes its inventory.
func gatherVersion(ctx context.Context, client *pypi.Client, gatherer *extract.Gatherer, cfg *config.Config, sink *diag.Sink, version string) error {
	artifacts, err := client.Artifacts(ctx, cfg.Package, version)
	if err != nil {
		return err
	}

	artifact, ok := client.SelectArtifact(artifacts, cfg.PlatformTag, version)
	if !ok {
		// Already reported through the sink; skip this version.
		return fmt.Errorf("no %s wheel", cfg.PlatformTag)
	}

	tmpDir, err := os.MkdirTemp("", "pysymbols-"+version+"-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	if err := artifact.Materialize(ctx, tmpDir); err != nil {
		return err
	}

	apiRoot := filepath.Join(tmpDir, filepath.FromSlash(cfg.APIDir))
	symbols, err := gatherer.Gather(ctx, apiRoot, version)
	if err != nil {
		return err
	}

	path, err := extract.WriteInventory(cfg.OutputDir, version, symbols)
	if err != nil {
		return err
	}

	sink.Info("inventory written", diag.Fields{
		"version": version,
		"symbols": fmt.Sprintf("%d", len(symbols)),
		"path":    path,
	})
	return nil
}

// resolveVersions expands the --versions flag into a concrete list.
func resolveVersions(ctx context.Context, client *pypi.Client, pkg, spec string) ([]string, error) {
	if spec == "all" {
		return client.Versions(ctx, pkg)
	}

	var versions []string
	for _, v := range strings.Split(spec, ",") {
		if v = strings.TrimSpace(v); v != "" {
			versions = append(versions, v)
		}
	}
	return versions, nil
}
