// internal/config/global.go
//
// Per-environment registry.
//
// Context
// -------
// GlobalConfig pairs the active Environment with one Config per member of
// the enumeration.  Storage is an array indexed by Environment, so a
// missing entry cannot be represented.
//
// Notes
// -----
//   - Get hands out deep copies.  The stored values never change after
//     construction.
package config

import (
	"encoding/json"
	"fmt"
)

// GlobalConfig holds one Config per Environment and the active tag.  It is
// built once at startup and read-only afterward.
type GlobalConfig struct {
	Env Environment

	// Indexed by Environment, so every member always has an entry.
	configs [numEnvironments]Config
}

// newGlobal builds one Config per environment with build.
func newGlobal(active Environment, build func(Environment) (Config, error)) (GlobalConfig, error) {
	g := GlobalConfig{Env: active}
	for _, env := range Environments {
		c, err := build(env)
		if err != nil {
			return GlobalConfig{}, err
		}
		g.configs[env] = c
	}
	return g, nil
}

// Get returns the Config for env.  An env outside the enumeration is a
// programming error and panics.
func (g GlobalConfig) Get(env Environment) Config {
	if !env.valid() {
		panic(fmt.Sprintf("config: %d config is missing", uint8(env)))
	}
	return g.configs[env].clone()
}

// Active returns the Config for the active environment.
func (g GlobalConfig) Active() Config { return g.Get(g.Env) }

// Equal reports whether both values select the same environment and every
// per-environment Config is Equal.
func (g GlobalConfig) Equal(o GlobalConfig) bool {
	if g.Env != o.Env {
		return false
	}
	for _, env := range Environments {
		if !g.configs[env].Equal(o.configs[env]) {
			return false
		}
	}
	return true
}

// MarshalJSON renders {"env": "...", "configs": {"dev": {...}, ...}}.
func (g GlobalConfig) MarshalJSON() ([]byte, error) {
	configs := make(map[string]Config, len(Environments))
	for _, env := range Environments {
		configs[env.String()] = g.configs[env]
	}
	return json.Marshal(struct {
		Env     string            `json:"env"`
		Configs map[string]Config `json:"configs"`
	}{Env: g.Env.String(), Configs: configs})
}
