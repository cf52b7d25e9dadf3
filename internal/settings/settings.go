// internal/settings/settings.go
//
// Settings for the appconf tool itself.
//
/*
Context
--------
These are not the service settings resolved from config/application.toml.
They tell the appconf binary where to log, what to listen on, and which
base DSN to combine with a resolved database section.  `Load(dir)` builds
one `Settings` value from four layers (highest precedence last):

  1. Compiled-in defaults.
  2. Optional `<dir>/.env` file, loaded into the process environment.
  3. Optional `<dir>/config/appconf.yaml`.
  4. Environment variables prefixed `APPCONF_`, where `__` maps to “.”
     (e.g., `APPCONF_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into typed structs and validated.

Notes
-----
  • CONFIG_ENV is not read here; environment selection belongs to
    internal/config.
  • Oxford commas, two spaces after periods.
*/
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix scopes the environment overlay.
const EnvPrefix = "APPCONF_"

// FileName is the optional YAML file relative to the load directory.
var FileName = filepath.Join("config", "appconf.yaml")

// Log holds logger tunables.
type Log struct {
	Dir     string `koanf:"dir"`
	Level   string `koanf:"level"   validate:"oneof=debug info warn error"`
	Console bool   `koanf:"console"`
}

// HTTP holds the inspection server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

// Database holds the base DSN that a resolved database section is applied
// to.  Host, credentials, and flags live here; the database name and pool
// size come from config/application.toml.
type Database struct {
	DSN string `koanf:"dsn"`
}

// Settings is the tool's immutable settings aggregate.
type Settings struct {
	Log      Log      `koanf:"log"`
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
}

var v = validator.New()

func defaults() map[string]any {
	return map[string]any{
		"log.level":        "info",
		"log.console":      true,
		"http.listen_addr": "127.0.0.1:8099",
	}
}

// Load reads .env, YAML, and env overrides under dir and validates the
// result.
func Load(dir string) (*Settings, error) {
	// .env (optional, no error if missing)
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("settings .env: %w", err)
	}

	k := koanf.New(".")
	for key, val := range defaults() {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("settings default %s: %w", key, err)
		}
	}

	yamlPath := filepath.Join(dir, FileName)
	if _, err := os.Stat(yamlPath); err == nil {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			zap.S().Errorw("settings yaml load failed", "file", yamlPath, "err", err)
			return nil, fmt.Errorf("settings yaml: %w", err)
		}
		zap.S().Debugw("settings yaml loaded", "file", yamlPath)
	}

	// Env overrides: APPCONF_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		return nil, fmt.Errorf("settings env: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("settings unmarshal: %w", err)
	}
	if err := v.Struct(&s); err != nil {
		return nil, fmt.Errorf("settings invalid: %w", err)
	}
	return &s, nil
}
