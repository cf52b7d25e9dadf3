package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yanizio/appconf/internal/metrics"
)

func loaderAt(t *testing.T, dir string) *Loader {
	t.Helper()
	l := testLoader(t)
	l.Getwd = func() (string, error) { return dir, nil }
	return l
}

func TestReadConfig(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "[prod]\nport = 443\n")
	start := filepath.Join(root, "cmd", "web")
	if err := os.MkdirAll(start, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	before := testutil.ToFloat64(metrics.ResolveTotal)

	l := loaderAt(t, start)
	l.Env.Mode = Release
	g, err := l.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig error: %v", err)
	}
	if g.Env != Production {
		t.Fatalf("env = %v, want prod", g.Env)
	}
	active := g.Active()
	if active.Port != 443 {
		t.Fatalf("active port = %d, want 443", active.Port)
	}
	if file, _ := active.FilePath(); file != path {
		t.Fatalf("file path = %q, want %q", file, path)
	}

	if got := testutil.ToFloat64(metrics.ResolveTotal) - before; got != 1 {
		t.Fatalf("resolve counter moved by %v, want 1", got)
	}
	if v := testutil.ToFloat64(metrics.ActiveEnvironment.WithLabelValues("prod")); v != 1 {
		t.Fatalf("active env gauge = %v, want 1", v)
	}
}

func TestReadConfig_NotFound(t *testing.T) {
	before := testutil.ToFloat64(metrics.ResolveErrorsTotal.WithLabelValues("not_found"))

	_, err := loaderAt(t, t.TempDir()).ReadConfig()
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReadConfig err = %v, want ErrNotFound", err)
	}
	if got := testutil.ToFloat64(metrics.ResolveErrorsTotal.WithLabelValues("not_found")) - before; got != 1 {
		t.Fatalf("not_found counter moved by %v, want 1", got)
	}
}

func TestReadConfig_IOError(t *testing.T) {
	root := t.TempDir()
	// A directory where the file should be: Stat succeeds, ReadFile fails.
	if err := os.MkdirAll(filepath.Join(root, FileName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	_, err := loaderAt(t, root).ReadConfig()
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("ReadConfig err = %v, want IOError", err)
	}
	if ioErr.Path != filepath.Join(root, FileName) || ioErr.Unwrap() == nil {
		t.Fatalf("IOError = %+v", ioErr)
	}
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	metrics.SetActive("prod", "dev", "prod")
	before := testutil.ToFloat64(metrics.ResolveTotal)
	notFound := testutil.ToFloat64(metrics.ResolveErrorsTotal.WithLabelValues("not_found"))

	l := loaderAt(t, t.TempDir())
	g, err := l.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want, _ := l.ActiveDefaultFrom(nil)
	if !g.Equal(want) {
		t.Fatalf("Load without a file should equal defaults")
	}
	if _, ok := g.Active().Root(); ok {
		t.Fatalf("defaults should not carry a root path")
	}

	if got := testutil.ToFloat64(metrics.ResolveTotal) - before; got != 1 {
		t.Fatalf("resolve counter moved by %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.ResolveErrorsTotal.WithLabelValues("not_found")) - notFound; got != 0 {
		t.Fatalf("not_found counter moved by %v, want 0", got)
	}
	if v := testutil.ToFloat64(metrics.ActiveEnvironment.WithLabelValues("dev")); v != 1 {
		t.Fatalf("active dev gauge = %v, want 1", v)
	}
}

func TestLoad_BadEnvStillFatal(t *testing.T) {
	l := loaderAt(t, t.TempDir())
	l.Env.Lookup = lookupFrom(map[string]string{EnvVar: "staging"})
	if _, err := l.Load(); Kind(err) != "bad_env" {
		t.Fatalf("Load err = %v, want bad_env", err)
	}
}

func TestActiveDefaultFrom(t *testing.T) {
	l := testLoader(t)

	g, err := l.ActiveDefaultFrom(nil)
	if err != nil {
		t.Fatalf("ActiveDefaultFrom(nil) error: %v", err)
	}
	for _, env := range Environments {
		c := g.Get(env)
		if c.Env != env || !c.Equal(DefaultFor(env, 4)) {
			t.Fatalf("%v config = %+v, want defaults", env, c)
		}
	}

	path := testPath
	g, err = l.ActiveDefaultFrom(&path)
	if err != nil {
		t.Fatalf("ActiveDefaultFrom(path) error: %v", err)
	}
	for _, env := range Environments {
		if root, ok := g.Get(env).Root(); !ok || root != filepath.Dir(testPath) {
			t.Fatalf("%v root = %q, want %q", env, root, filepath.Dir(testPath))
		}
	}

	bad := ""
	if _, err := l.ActiveDefaultFrom(&bad); Kind(err) != "bad_file_path" {
		t.Fatalf("ActiveDefaultFrom(\"\") err = %v, want bad_file_path", err)
	}
}

func TestGlobalConfigGet_InvalidEnvironmentPanics(t *testing.T) {
	g, err := testLoader(t).ActiveDefaultFrom(nil)
	if err != nil {
		t.Fatalf("ActiveDefaultFrom error: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("Get(invalid) did not panic")
		}
	}()
	g.Get(Environment(7))
}

func TestGlobalConfigGet_ReturnsCopy(t *testing.T) {
	g, _ := testLoader(t).ActiveDefaultFrom(nil)
	c := g.Get(Development)
	*c.Workers = 1
	if *g.Get(Development).Workers != 8 {
		t.Fatalf("mutating a returned Config leaked into GlobalConfig")
	}
}

func TestGlobalConfigGet_ReturnsCopy_NestedExtras(t *testing.T) {
	g, err := testLoader(t).Parse("[global]\nfoo = {a = 1}\nlist = [[1, 2]]\n\n[[global.tags]]\nx = 1\n", testPath)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	dev := g.Get(Development)
	dev.Extras["foo"].(map[string]any)["a"] = int64(99)
	dev.Extras["tags"].([]map[string]any)[0]["x"] = int64(99)
	dev.Extras["list"].([]any)[0].([]any)[0] = int64(99)

	for _, env := range Environments {
		c := g.Get(env)
		if v := c.Extras["foo"].(map[string]any)["a"]; v != int64(1) {
			t.Fatalf("%v foo.a = %v, want 1", env, v)
		}
		if v := c.Extras["tags"].([]map[string]any)[0]["x"]; v != int64(1) {
			t.Fatalf("%v tags[0].x = %v, want 1", env, v)
		}
		if v := c.Extras["list"].([]any)[0].([]any)[0]; v != int64(1) {
			t.Fatalf("%v list[0][0] = %v, want 1", env, v)
		}
	}

	// [global] values are copied per environment, not shared.
	g.configs[Development].Extras["foo"].(map[string]any)["a"] = int64(7)
	if v := g.Get(Production).Extras["foo"].(map[string]any)["a"]; v != int64(1) {
		t.Fatalf("prod foo.a = %v after changing stored dev, want 1", v)
	}
}

func TestGlobalConfigMarshalJSON(t *testing.T) {
	g, err := testLoader(t).Parse("[dev.database]\nadapter = \"mysql\"\nname = \"shop\"", testPath)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	raw, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var out struct {
		Env     string `json:"env"`
		Configs map[string]struct {
			Env      string    `json:"env"`
			Root     string    `json:"root"`
			Address  string    `json:"address"`
			Port     int       `json:"port"`
			Workers  int       `json:"workers"`
			Database *Database `json:"database"`
		} `json:"configs"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	dev := out.Configs["dev"]
	if out.Env != "dev" || dev.Env != "dev" || dev.Port != 8080 || dev.Workers != 8 {
		t.Fatalf("unexpected JSON: %s", raw)
	}
	if dev.Root != filepath.Dir(testPath) || dev.Database == nil || dev.Database.Name != "shop" {
		t.Fatalf("unexpected JSON: %s", raw)
	}
	if out.Configs["prod"].Database != nil {
		t.Fatalf("prod database should be omitted: %s", raw)
	}
}

func TestKind(t *testing.T) {
	cases := map[string]error{
		"":              nil,
		"not_found":     ErrNotFound,
		"io":            &IOError{Path: "x", Err: os.ErrPermission},
		"bad_file_path": &BadFilePathError{Path: "/"},
		"bad_env":       &BadEnvError{Raw: "x"},
		"bad_entry":     &BadEntryError{Name: "dev.database"},
		"bad_type":      &BadTypeError{Name: "dev"},
		"parse":         &ParseError{Message: "m"},
		"unknown":       errors.New("other"),
	}
	for want, err := range cases {
		if got := Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
}
