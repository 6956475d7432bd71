package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sarac/internal/diagfmt"
	"sarac/internal/driver"
	"sarac/internal/observ"
	"sarac/internal/project"
)

// runConfig is the merged view of persistent flags and the nearest
// sarac.toml. Flags win over the manifest; the manifest wins over defaults.
type runConfig struct {
	driver.Options
	Output string
	Quiet  bool
	Color  bool
}

func resolveRunConfig(cmd *cobra.Command, inputPath string, useCache bool) (runConfig, error) {
	flags := cmd.Root().PersistentFlags()

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return runConfig{}, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return runConfig{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return runConfig{}, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return runConfig{}, fmt.Errorf("failed to get color flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return runConfig{}, fmt.Errorf("failed to get timings flag: %w", err)
	}

	cfg := runConfig{
		Options: driver.Options{
			Jobs:           jobs,
			MaxDiagnostics: maxDiagnostics,
		},
		Quiet: quiet,
		Color: colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stderr)),
	}
	if timings {
		cfg.Timer = observ.NewTimer()
	}

	manifest, ok, err := project.LoadNearest(filepath.Dir(inputPath))
	if err != nil {
		return runConfig{}, err
	}
	if ok {
		cfg.ModuleName = manifest.Package.Name
		cfg.Output = manifest.Build.Output
		if !flags.Changed("jobs") && manifest.Build.Jobs > 0 {
			cfg.Jobs = manifest.Build.Jobs
		}
		if !flags.Changed("max-diagnostics") && manifest.Build.MaxDiagnostics > 0 {
			cfg.MaxDiagnostics = manifest.Build.MaxDiagnostics
		}
		useCache = useCache || manifest.Build.Cache
	}

	if useCache {
		cache, err := driver.OpenDiskCache("sarac")
		if err != nil {
			return runConfig{}, fmt.Errorf("failed to open cache: %w", err)
		}
		cfg.Cache = cache
	}
	return cfg, nil
}

// reportDiagnostics renders the bag to stderr in deterministic order, then
// the phase timings when requested.
func reportDiagnostics(res *driver.Result, cfg runConfig) {
	if res != nil && res.Bag != nil && res.Bag.Len() > 0 {
		res.Bag.Sort()
		res.Bag.Dedup()
		diagfmt.Pretty(os.Stderr, res.Bag, nil, diagfmt.PrettyOpts{
			Color:     cfg.Color,
			ShowNotes: true,
		})
	}
	if cfg.Timer != nil {
		fmt.Fprint(os.Stderr, cfg.Timer.Summary())
	}
}
