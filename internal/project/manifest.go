package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrPackageSectionMissing indicates that [package] is missing in a manifest.
var ErrPackageSectionMissing = errors.New("missing [package]")

// Manifest is a parsed sarac.toml. The [build] section is optional; absent
// fields keep their zero values and the caller applies its own defaults.
type Manifest struct {
	Package PackageSection
	Build   BuildSection
}

// PackageSection names the module. The name overrides the one carried by
// the AST document.
type PackageSection struct {
	Name string `toml:"name"`
}

// BuildSection tunes a lowering run.
type BuildSection struct {
	Output         string `toml:"output"`
	Jobs           int    `toml:"jobs"`
	Cache          bool   `toml:"cache"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

type manifestFile struct {
	Package PackageSection `toml:"package"`
	Build   BuildSection   `toml:"build"`
}

// LoadManifest parses a sarac.toml.
func LoadManifest(path string) (Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	name := strings.TrimSpace(cfg.Package.Name)
	if name == "" {
		return Manifest{}, fmt.Errorf("%s: [package].name is empty", path)
	}
	return Manifest{
		Package: PackageSection{Name: name},
		Build:   cfg.Build,
	}, nil
}

// LoadNearest locates sarac.toml from startDir upward and parses it.
// Returns ok=false without error when no manifest exists.
func LoadNearest(startDir string) (Manifest, bool, error) {
	path, ok, err := FindSaracToml(startDir)
	if err != nil || !ok {
		return Manifest{}, ok, err
	}
	m, err := LoadManifest(path)
	if err != nil {
		return Manifest{}, true, err
	}
	return m, true, nil
}
