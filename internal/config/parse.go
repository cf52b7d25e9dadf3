// internal/config/parse.go
//
// Table parser: TOML text → GlobalConfig.
//
// Context
// -------
// config/application.toml is a table of tables.  Each top-level entry is
// one environment section ([dev], [production], …) or the [global]
// section, which applies to every environment after the per-environment
// sections.  Entries with any other name are accepted and ignored so new
// sections can ship before the binary that reads them.
//
//	[dev]
//	address = "127.0.0.1"
//	port    = 9090
//
//	[prod.database]
//	adapter = "mysql"
//	name    = "shop"
//	pool    = 32
//
// Recognized keys are overlaid onto the environment's default Config.
// Unrecognized keys land in Config.Extras untouched.
package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const globalSection = "global"

// Parse decodes raw (read from path) and overlays it onto the defaults
// for both environments.
func (l *Loader) Parse(raw, path string) (GlobalConfig, error) {
	var tree map[string]any
	if _, err := toml.Decode(raw, &tree); err != nil {
		perr := decodeError(raw, path, err)
		l.log().Errorw("config parse failed", "file", path, "err", perr)
		return GlobalConfig{}, perr
	}
	return l.fromTree(raw, path, tree)
}

// fromTree validates the decoded document and applies every section.
func (l *Loader) fromTree(raw, path string, doc any) (GlobalConfig, error) {
	table, ok := doc.(map[string]any)
	if !ok {
		return GlobalConfig{}, &ParseError{
			Source:  raw,
			Path:    path,
			Message: "expected a table, but got a " + kindOf(doc),
		}
	}

	global, err := l.ActiveDefaultFrom(&path)
	if err != nil {
		return GlobalConfig{}, err
	}

	sections := make(map[string]map[string]any, len(table))
	for _, name := range sortedKeys(table) {
		sub, ok := table[name].(map[string]any)
		if !ok {
			return GlobalConfig{}, &BadTypeError{
				Name:     name,
				Expected: "a table",
				Observed: kindOf(table[name]),
				Path:     path,
			}
		}
		sections[name] = sub
	}

	for _, name := range sortedKeys(sections) {
		if name == globalSection {
			continue
		}
		env, err := ParseEnvironment(name)
		if err != nil {
			l.log().Debugw("config section ignored", "file", path, "section", name)
			continue
		}
		if err := global.configs[env].overlay(name, sections[name], path); err != nil {
			return GlobalConfig{}, err
		}
	}

	if sub, ok := sections[globalSection]; ok {
		for _, env := range Environments {
			if err := global.configs[env].overlay(globalSection, sub, path); err != nil {
				return GlobalConfig{}, err
			}
		}
	}

	for _, env := range Environments {
		if err := validateConfig(global.configs[env], path); err != nil {
			l.log().Errorw("config validation failed", "file", path, "env", env, "err", err)
			return GlobalConfig{}, err
		}
	}
	return global, nil
}

/*──────────────────────────── overlay ─────────────────────────────────────*/

// overlay applies one section onto c.  The database table is handled last
// so its pool default sees the section's final worker count.
func (c *Config) overlay(section string, table map[string]any, path string) error {
	for _, key := range sortedKeys(table) {
		val := table[key]
		name := section + "." + key

		switch key {
		case "address":
			s, err := asString(name, val, path)
			if err != nil {
				return err
			}
			c.Address = s
		case "port":
			n, err := asUint16(name, val, path)
			if err != nil {
				return err
			}
			c.Port = n
		case "workers":
			n, err := asUint16(name, val, path)
			if err != nil {
				return err
			}
			c.Workers = &n
		case "database":
			// applied below
		default:
			if c.Extras == nil {
				c.Extras = make(map[string]any)
			}
			c.Extras[key] = copyValue(val)
		}
	}

	if val, ok := table["database"]; ok {
		return c.overlayDatabase(section+".database", val, path)
	}
	return nil
}

func (c *Config) overlayDatabase(name string, val any, path string) error {
	table, ok := val.(map[string]any)
	if !ok {
		return &BadTypeError{Name: name, Expected: "a table", Observed: kindOf(val), Path: path}
	}

	var db Database
	fresh := c.Database == nil
	if !fresh {
		db = *c.Database
	}

	for _, key := range sortedKeys(table) {
		field := name + "." + key
		var err error
		switch key {
		case "adapter":
			db.Adapter, err = asString(field, table[key], path)
		case "name":
			db.Name, err = asString(field, table[key], path)
		case "pool":
			db.Pool, err = asUint16(field, table[key], path)
		}
		if err != nil {
			return err
		}
	}

	if _, ok := table["pool"]; !ok && fresh {
		db.Pool = 1
		if c.Workers != nil && *c.Workers > 0 {
			db.Pool = *c.Workers
		}
	}
	c.Database = &db
	return nil
}

/*──────────────────────────── scalars ─────────────────────────────────────*/

func asString(name string, val any, path string) (string, error) {
	s, ok := val.(string)
	if !ok {
		return "", &BadTypeError{Name: name, Expected: "a string", Observed: kindOf(val), Path: path}
	}
	return s, nil
}

func asUint16(name string, val any, path string) (uint16, error) {
	n, ok := val.(int64)
	if !ok {
		return 0, &BadTypeError{
			Name:     name,
			Expected: "an unsigned 16-bit integer",
			Observed: kindOf(val),
			Path:     path,
		}
	}
	if n < 0 || n > math.MaxUint16 {
		return 0, &BadTypeError{
			Name:     name,
			Expected: "an unsigned 16-bit integer",
			Observed: "an out-of-range integer",
			Path:     path,
		}
	}
	return uint16(n), nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// kindOf names a decoded TOML value the way the format does.
func kindOf(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case int64:
		return "integer"
	case float64:
		return "float"
	case bool:
		return "boolean"
	case time.Time:
		return "datetime"
	case []any, []map[string]any:
		return "array"
	case map[string]any:
		return "table"
	case nil:
		return "nothing"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// decodeError converts a decoder failure into a ParseError, carrying the
// line and column when the decoder reports a position.
func decodeError(raw, path string, err error) *ParseError {
	perr := &ParseError{Source: raw, Path: path, Message: err.Error()}

	var tpe toml.ParseError
	if errors.As(err, &tpe) && tpe.Position.Line > 0 {
		perr.Location = &Location{
			Line:   tpe.Position.Line,
			Column: columnAt(raw, tpe.Position.Start),
		}
	}
	return perr
}

// columnAt returns the 1-based column of byte offset off in raw.
func columnAt(raw string, off int) int {
	if off < 0 {
		return 1
	}
	if off > len(raw) {
		off = len(raw)
	}
	return off - strings.LastIndexByte(raw[:off], '\n')
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
