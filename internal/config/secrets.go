// internal/config/secrets.go
//
// Secret reference resolution.
//
// Context
// -------
// A string value of the form "vault:<path>#<key>" names a secret instead
// of holding it.  ResolveSecrets swaps references for values once, at
// startup, and returns a new GlobalConfig.
//
// Notes
// -----
//   - Only address, database.adapter, and database.name are scanned.
package config

import (
	"context"
	"strings"
)

// SecretPrefix marks a string value that names a secret instead of
// holding it, e.g. "vault:secret/shop/db#name".
const SecretPrefix = "vault:"

// SecretResolver looks up the value behind a secret reference.  ref has
// SecretPrefix stripped.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

type secretField struct {
	name string
	val  *string
}

// ResolveSecrets returns a copy of g with every secret reference in
// address, database.adapter, and database.name replaced by its value.
func (g GlobalConfig) ResolveSecrets(ctx context.Context, r SecretResolver) (GlobalConfig, error) {
	out := GlobalConfig{Env: g.Env}
	for _, env := range Environments {
		c := g.configs[env].clone()
		path, _ := c.FilePath()

		prefix := env.String() + "."
		fields := []secretField{{prefix + "address", &c.Address}}
		if c.Database != nil {
			fields = append(fields,
				secretField{prefix + "database.adapter", &c.Database.Adapter},
				secretField{prefix + "database.name", &c.Database.Name},
			)
		}

		for _, f := range fields {
			ref, ok := strings.CutPrefix(*f.val, SecretPrefix)
			if !ok {
				continue
			}
			s, err := r.Resolve(ctx, ref)
			if err != nil {
				return GlobalConfig{}, &BadEntryError{Name: f.name, Path: path, Err: err}
			}
			*f.val = s
		}
		out.configs[env] = c
	}
	return out, nil
}
