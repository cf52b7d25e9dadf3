// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs are what the table parser produces for each environment.
// A Config starts life as the compiled-in default for its environment and
// is overlaid with the matching section of config/application.toml.
//
// Notes
// -----
//   - File path and root path are bookkeeping set during construction.
//     They are not part of equality and cannot be set from the file.
//   - Values are immutable once handed out.  Overlay works on a copy.
//   - Oxford commas, two spaces after periods.  No em-dash.
package config

import "encoding/json"

//
// Database section
//

// Database names the driver, the database, and the pool size for one
// environment.  Present only when the file declares a database table.
type Database struct {
	Adapter string `json:"adapter" validate:"required"`
	Name    string `json:"name"    validate:"required"`
	Pool    uint16 `json:"pool"`
}

//
// Root aggregate
//

// Config is the resolved settings for one environment.
type Config struct {
	Env      Environment    `json:"-"`
	Address  string         `json:"address" validate:"required"`
	Port     uint16         `json:"port"`
	Workers  *uint16        `json:"workers,omitempty"`
	Database *Database      `json:"database,omitempty"`
	Extras   map[string]any `json:"extras,omitempty"`

	filePath string
	rootPath string
}

// FilePath returns the config file this value was anchored at, if any.
func (c Config) FilePath() (string, bool) { return c.filePath, c.filePath != "" }

// Root returns the directory holding the config file, if any.  Other
// relative paths in the service resolve against it.
func (c Config) Root() (string, bool) { return c.rootPath, c.rootPath != "" }

// Equal compares address, port, and worker count.  Environment and paths
// are deliberately excluded.
func (c Config) Equal(o Config) bool {
	if c.Address != o.Address || c.Port != o.Port {
		return false
	}
	switch {
	case c.Workers == nil && o.Workers == nil:
		return true
	case c.Workers == nil || o.Workers == nil:
		return false
	default:
		return *c.Workers == *o.Workers
	}
}

// MarshalJSON adds the environment name and root path to the exported
// fields.
func (c Config) MarshalJSON() ([]byte, error) {
	type plain Config
	return json.Marshal(struct {
		Env  string `json:"env"`
		Root string `json:"root,omitempty"`
		plain
	}{
		Env:   c.Env.String(),
		Root:  c.rootPath,
		plain: plain(c),
	})
}

// clone returns a copy whose pointer and map fields are not shared, down
// to nested tables in Extras.
func (c Config) clone() Config {
	out := c
	if c.Workers != nil {
		w := *c.Workers
		out.Workers = &w
	}
	if c.Database != nil {
		db := *c.Database
		out.Database = &db
	}
	if c.Extras != nil {
		out.Extras = copyTable(c.Extras)
	}
	return out
}

// copyValue returns v with every nested table and array copied, so the
// result shares no mutable state with v.  Scalars are returned as is.
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyTable(t)
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, m := range t {
			out[i] = copyTable(m)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}

func copyTable(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}
