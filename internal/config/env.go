// internal/config/env.go
//
// Deployment environment selection.
//
// Context
// -------
// The active environment comes from CONFIG_ENV.  When the variable is
// unset the fallback depends on how the binary was built: debug builds
// run as Development, release builds as Production.  The build mode is
// a link-time string so tests can force either branch through
// EnvResolver without rebuilding.
//
//	go build -ldflags "-X github.com/yanizio/appconf/internal/config.buildMode=release"
//
// Notes
// -----
//   - Aliases are matched case-insensitively.  Unknown values are an
//     error, never a silent default.
//   - Oxford commas, two spaces after periods.
package config

import (
	"os"
	"strings"
)

// EnvVar names the variable that selects the active environment.
const EnvVar = "CONFIG_ENV"

// Environment is the closed set of deployment modes.
type Environment uint8

const (
	Development Environment = iota
	Production

	numEnvironments = iota
)

// Environments lists every member in declaration order.
var Environments = [numEnvironments]Environment{Development, Production}

// validEnvironments is echoed back in BadEnvError messages.
const validEnvironments = "dev, prod"

// String returns the short name used in config files and logs.
func (e Environment) String() string {
	switch e {
	case Development:
		return "dev"
	case Production:
		return "prod"
	default:
		return "invalid"
	}
}

// IsDev reports whether e is Development.
func (e Environment) IsDev() bool { return e == Development }

// IsProd reports whether e is Production.
func (e Environment) IsProd() bool { return e == Production }

func (e Environment) valid() bool { return e < numEnvironments }

// ParseEnvironment maps an alias onto its Environment.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(s) {
	case "dev", "d", "development", "devel":
		return Development, nil
	case "p", "prod", "production":
		return Production, nil
	}
	return 0, &BadEnvError{Raw: s}
}

/*──────────────────────────── build mode ──────────────────────────────────*/

// BuildMode selects the fallback environment when CONFIG_ENV is unset.
type BuildMode uint8

const (
	Debug BuildMode = iota
	Release
)

// buildMode is overridden at link time; anything but "release" is Debug.
var buildMode = "debug"

// DefaultBuildMode reports the mode this binary was linked with.
func DefaultBuildMode() BuildMode {
	if strings.EqualFold(buildMode, "release") {
		return Release
	}
	return Debug
}

func (m BuildMode) fallback() Environment {
	if m == Release {
		return Production
	}
	return Development
}

func (m BuildMode) String() string {
	if m == Release {
		return "release"
	}
	return "debug"
}

/*──────────────────────────── resolver ────────────────────────────────────*/

// EnvResolver determines the active environment.  A nil Lookup reads the
// process environment.
type EnvResolver struct {
	Mode   BuildMode
	Lookup func(key string) (string, bool)
}

// DefaultEnvResolver uses the link-time build mode and os.LookupEnv.
func DefaultEnvResolver() EnvResolver {
	return EnvResolver{Mode: DefaultBuildMode(), Lookup: os.LookupEnv}
}

// Active returns the environment named by CONFIG_ENV or the build-mode
// fallback when it is unset.
func (r EnvResolver) Active() (Environment, error) {
	lookup := r.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	raw, ok := lookup(EnvVar)
	if !ok {
		return r.Mode.fallback(), nil
	}
	return ParseEnvironment(raw)
}
