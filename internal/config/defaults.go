// internal/config/defaults.go
//
// Compiled-in defaults.
//
// Context
// -------
// Every environment starts from the same value: localhost:8080 with two
// workers per CPU.  The CPU count is a parameter so callers (and tests)
// decide where it comes from.
//
// Notes
// -----
//   - Anchoring at a file sets the file path first, then the root.  A
//     rejected path keeps the former and lacks the latter.
package config

import (
	"math"
	"path/filepath"
)

const (
	defaultAddress = "localhost"
	defaultPort    = 8080
)

// DefaultFor returns the compiled-in Config for env.  The worker count is
// twice cpus, clamped to the 16-bit range.
func DefaultFor(env Environment, cpus int) Config {
	workers := defaultWorkers(cpus)
	return Config{
		Env:     env,
		Address: defaultAddress,
		Port:    defaultPort,
		Workers: &workers,
	}
}

// DefaultFromPath is DefaultFor anchored at a config file.  The parent of
// path becomes the root.  A path with no parent is rejected; the returned
// Config still records path but has no root.
func DefaultFromPath(env Environment, path string, cpus int) (Config, error) {
	cfg := DefaultFor(env, cpus)
	cfg.filePath = path

	parent, ok := parentDir(path)
	if !ok {
		return cfg, &BadFilePathError{Path: path, Reason: "no parent directory"}
	}
	cfg.rootPath = parent
	return cfg, nil
}

func defaultWorkers(cpus int) uint16 {
	if cpus < 0 {
		cpus = 0
	}
	n := cpus * 2
	if n > math.MaxUint16 {
		n = math.MaxUint16
	}
	return uint16(n)
}

// parentDir reports the directory containing path.  The empty path and
// the filesystem root have none.
func parentDir(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	clean := filepath.Clean(path)
	parent := filepath.Dir(clean)
	if parent == clean {
		return "", false
	}
	return parent, true
}
