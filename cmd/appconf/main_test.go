package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/yanizio/appconf/internal/config"
	"github.com/yanizio/appconf/internal/settings"
)

func newTestApp(t *testing.T, dir string) (*app, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &app{
		dir: dir,
		env: "dev",
		out: &out,
		log: zaptest.NewLogger(t).Sugar(),
		settings: &settings.Settings{
			HTTP: settings.HTTP{ListenAddr: "127.0.0.1:0"},
		},
	}, &out
}

func writeTree(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return dir
}

func TestShow(t *testing.T) {
	a, out := newTestApp(t, writeTree(t, "[dev]\nport = 7000\n"))
	if err := a.show(true); err != nil {
		t.Fatalf("show error: %v", err)
	}

	var got struct {
		Env  string `json:"env"`
		Port int    `json:"port"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if got.Env != "dev" || got.Port != 7000 {
		t.Fatalf("show printed %+v", got)
	}
}

func TestPrintEnv(t *testing.T) {
	a, out := newTestApp(t, t.TempDir())
	a.env = "production"
	if err := a.printEnv(); err != nil {
		t.Fatalf("printEnv error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "prod" {
		t.Fatalf("printEnv = %q, want prod", out.String())
	}

	a.env = "qa"
	if err := a.printEnv(); config.Kind(err) != "bad_env" {
		t.Fatalf("printEnv err = %v, want bad_env", err)
	}
}

func TestCheck(t *testing.T) {
	good := writeTree(t, "[prod]\nport = 443\n")
	bad := writeTree(t, "dev = 5\n")

	a, out := newTestApp(t, good)
	err := a.check([]string{good, bad}, 2)
	if config.Kind(err) != "bad_type" {
		t.Fatalf("check err = %v, want bad_type", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("check printed %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "ok") || !strings.Contains(lines[0], good) {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "FAIL") || !strings.Contains(lines[1], "bad_type") {
		t.Fatalf("line 1 = %q", lines[1])
	}
}

func TestServe_ShutsDownOnSignal(t *testing.T) {
	t.Cleanup(func() { signalNotify = signal.Notify })

	signalNotify = func(ch chan<- os.Signal, _ ...os.Signal) {
		go func() { ch <- syscall.SIGTERM }()
	}

	a, _ := newTestApp(t, writeTree(t, ""))
	if err := a.serve(context.Background(), false); err != nil {
		t.Fatalf("serve error: %v", err)
	}
}
