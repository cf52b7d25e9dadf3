// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// The table parser calls validateConfig on every environment once all
// sections are overlaid.  Type errors are caught earlier, while reading
// scalars; this pass only rejects values that are well-typed but unusable,
// e.g. an empty address or a database table without an adapter.
//
// Notes
// -----
//   - Failures surface as BadEntryError naming the section, like
//     "dev.database", so operators know which table to fix.
//   - Oxford commas, two spaces after periods.

package config

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateConfig returns nil or a BadEntryError for the first offending
// section of c.
func validateConfig(c Config, path string) error {
	err := v.Struct(c)
	if err == nil {
		return nil
	}

	name := c.Env.String()
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		ns := fields[0].StructNamespace() // e.g. Config.Database.Adapter
		if strings.HasPrefix(ns, "Config.Database.") {
			name += ".database"
		} else {
			name += "." + strings.ToLower(fields[0].StructField())
		}
	}
	return &BadEntryError{Name: name, Path: path, Err: err}
}
