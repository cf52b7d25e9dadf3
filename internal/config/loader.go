// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`ReadConfig()` builds one immutable `GlobalConfig` in three steps:

  1. Locate `config/application.toml` by climbing from the working
     directory toward the filesystem root.
  2. Read the file.  Open or read failures become `IOError`.
  3. Parse it as a table of per-environment tables and overlay each onto
     the compiled-in defaults, anchored at the file's directory.

`Load()` is the startup entry point: a missing file degrades to defaults,
every other failure is returned.  An invalid CONFIG_ENV is always fatal,
with or without a file.

Instrumentation
---------------
  • DEBUG spans — file discovery, file read.
  • ERROR spans — parse and validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) unless Loader.Log is
    set, so early boot issues surface before the file logger exists.
  • Every ReadConfig and Load outcome is counted once in internal/metrics.

Notes
-----
  • Host lookups (env, cwd, CPU count) are Loader fields so tests can pin
    them.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"errors"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/yanizio/appconf/internal/metrics"
)

// Loader carries the host lookups the pipeline depends on.  The zero value
// is usable and falls back to process defaults for every field.
type Loader struct {
	Env   EnvResolver
	CPUs  int
	Getwd func() (string, error)
	Log   *zap.SugaredLogger
}

// NewLoader returns a Loader bound to the running process.
func NewLoader() *Loader {
	return &Loader{
		Env:   DefaultEnvResolver(),
		CPUs:  runtime.NumCPU(),
		Getwd: os.Getwd,
	}
}

/*──────────────────────────── registry ────────────────────────────────────*/

// ActiveDefaultFrom builds both environments from defaults.  With a path,
// each Config is anchored at it.  The active environment always comes from
// the resolver.
func (l *Loader) ActiveDefaultFrom(path *string) (GlobalConfig, error) {
	build := func(env Environment) (Config, error) {
		return DefaultFor(env, l.cpus()), nil
	}
	if path != nil {
		build = func(env Environment) (Config, error) {
			return DefaultFromPath(env, *path, l.cpus())
		}
	}

	g, err := newGlobal(Development, build)
	if err != nil {
		return GlobalConfig{}, err
	}

	active, err := l.Env.Active()
	if err != nil {
		return GlobalConfig{}, err
	}
	g.Env = active
	return g, nil
}

// Find returns the nearest config file at or above the working directory.
func (l *Loader) Find() (string, error) {
	getwd := l.Getwd
	if getwd == nil {
		getwd = os.Getwd
	}
	wd, err := getwd()
	if err != nil {
		return "", ErrNotFound
	}

	path, probed, err := FindFrom(wd)
	metrics.LocateDepth.Observe(float64(probed))
	if err != nil {
		l.log().Debugw("config file not found", "start", wd, "probed", probed)
		return "", err
	}
	l.log().Debugw("config file found", "file", path, "probed", probed)
	return path, nil
}

// ReadConfig locates, reads, and parses the config file.
func (l *Loader) ReadConfig() (g GlobalConfig, err error) {
	defer func() { l.observe(g, err) }()
	return l.read()
}

// Load is ReadConfig with a fallback to defaults when no file exists.  The
// fallback counts as a successful resolution.
func (l *Loader) Load() (g GlobalConfig, err error) {
	defer func() { l.observe(g, err) }()

	g, err = l.read()
	if errors.Is(err, ErrNotFound) {
		l.log().Warnw("config file not found, using defaults", "file", FileName)
		return l.ActiveDefaultFrom(nil)
	}
	return g, err
}

func (l *Loader) read() (GlobalConfig, error) {
	path, err := l.Find()
	if err != nil {
		return GlobalConfig{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return GlobalConfig{}, &IOError{Path: path, Err: err}
	}
	l.log().Debugw("config file read", "file", path, "bytes", len(raw))

	return l.Parse(string(raw), path)
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func (l *Loader) observe(g GlobalConfig, err error) {
	metrics.ObserveResolve(Kind(err))
	if err != nil {
		return
	}

	names := make([]string, 0, len(Environments))
	for _, env := range Environments {
		names = append(names, env.String())
	}
	metrics.SetActive(g.Env.String(), names...)

	active := g.Active()
	root, _ := active.Root()
	l.log().Infow("config loaded",
		"env", g.Env,
		"address", active.Address,
		"port", active.Port,
		"root", root,
	)
}

func (l *Loader) cpus() int {
	if l.CPUs > 0 {
		return l.CPUs
	}
	return runtime.NumCPU()
}

func (l *Loader) log() *zap.SugaredLogger {
	if l.Log != nil {
		return l.Log
	}
	return zap.S()
}

// ReadConfig resolves the process configuration from the nearest config
// file.
func ReadConfig() (GlobalConfig, error) { return NewLoader().ReadConfig() }

// ActiveDefaultFrom builds process defaults, optionally anchored at path.
func ActiveDefaultFrom(path *string) (GlobalConfig, error) {
	return NewLoader().ActiveDefaultFrom(path)
}

// Load resolves the process configuration, falling back to defaults when
// no file exists.
func Load() (GlobalConfig, error) { return NewLoader().Load() }
