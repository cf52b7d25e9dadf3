// internal/config/locate.go
//
// Config file discovery.
//
// Context
// -------
// Services run from a subdirectory of the project as often as from its
// root, so the search climbs from the start directory one parent at a time
// until config/application.toml exists or the filesystem root is reached.
//
// Notes
// -----
//   - The probe count feeds the config_locate_depth histogram.
package config

import (
	"os"
	"path/filepath"
)

// FileName is the config file location relative to some ancestor of the
// working directory.
var FileName = filepath.Join("config", "application.toml")

// FindFrom climbs from start toward the filesystem root and returns the
// first start/…/config/application.toml that exists, together with the
// number of directories probed.
func FindFrom(start string) (string, int, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", 0, ErrNotFound
	}
	probed := 0
	for {
		probed++
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, probed, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			return "", probed, ErrNotFound
		}
		dir = parent
	}
}
