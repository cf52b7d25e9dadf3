// cmd/appconf/main.go
//
// appconf – configuration resolver entry point.
//
// Life-cycle
// ----------
//
//  1. Parse flags and pick the working directory (--dir or cwd).
//
//  2. Load the tool's own settings (.env, config/appconf.yaml, APPCONF_*).
//
//  3. Start the logger (daily JSON file when log.dir is set, console tee).
//
//  4. Run the command:
//
//     • show   – resolve and print every environment as JSON
//     • env    – print the active environment
//     • check  – resolve several trees concurrently and report each
//     • serve  – resolve once, then expose it over HTTP with /metrics
//
// Every resolution failure aborts with a non-zero exit status.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/appconf/internal/config"
	"github.com/yanizio/appconf/internal/database"
	"github.com/yanizio/appconf/internal/logger"
	"github.com/yanizio/appconf/internal/server"
	"github.com/yanizio/appconf/internal/settings"
	"github.com/yanizio/appconf/internal/vault"
)

var signalNotify = signal.Notify

// app carries what every command needs once flags are parsed.
type app struct {
	dir      string
	env      string
	out      io.Writer
	log      *zap.SugaredLogger
	settings *settings.Settings
}

// loader returns a config.Loader rooted at dir.  A non-empty env pins
// CONFIG_ENV for this run.
func (a *app) loader(dir string) *config.Loader {
	l := config.NewLoader()
	l.Log = a.log
	l.Getwd = func() (string, error) { return dir, nil }
	if a.env != "" {
		env := a.env
		l.Env.Lookup = func(key string) (string, bool) {
			if key == config.EnvVar {
				return env, true
			}
			return os.LookupEnv(key)
		}
	}
	return l
}

/*──────────────────────────── commands ────────────────────────────────────*/

func (a *app) show(activeOnly bool) error {
	g, err := a.loader(a.dir).Load()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if activeOnly {
		return enc.Encode(g.Active())
	}
	return enc.Encode(g)
}

func (a *app) printEnv() error {
	env, err := a.loader(a.dir).Env.Active()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, env)
	return err
}

// check resolves each directory independently.  All results are printed;
// the first failure is returned.
func (a *app) check(dirs []string, limit int) error {
	results := make([]error, len(dirs))
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			_, err := a.loader(dir).ReadConfig()
			results[i] = err
			return err
		})
	}
	first := g.Wait()

	for i, dir := range dirs {
		if err := results[i]; err != nil {
			fmt.Fprintf(a.out, "FAIL  %s  %s: %v\n", dir, config.Kind(err), err)
			continue
		}
		fmt.Fprintf(a.out, "ok    %s\n", dir)
	}
	return first
}

func (a *app) serve(ctx context.Context, useVault bool) error {
	g, err := a.loader(a.dir).Load()
	if err != nil {
		return err
	}

	if useVault {
		cli, err := vault.New(ctx, a.log)
		if err != nil {
			return err
		}
		if g, err = g.ResolveSecrets(ctx, cli); err != nil {
			return err
		}
	}

	if db := g.Active().Database; db != nil && a.settings.Database.DSN != "" {
		pool, err := database.Open(ctx, *db, a.settings.Database.DSN)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		a.log.Infow("database reachable", "adapter", db.Adapter, "name", db.Name, "pool", db.Pool)
		_ = pool.Close()
	}

	srv := server.New(a.settings.HTTP.ListenAddr, g, a.log)

	errCh := make(chan error, 1)
	go func() {
		a.log.Infow("inspection server listening", "addr", srv.Addr, "env", g.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	a.log.Infow("shutting down inspection server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

/*──────────────────────────── main ────────────────────────────────────────*/

// runningInTTY returns true when stderr is a character device.
func runningInTTY() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	cli := kingpin.New("appconf", "Resolve config/application.toml for the active environment")
	dir := cli.Flag("dir", "Directory to start the config search from (default: cwd)").String()
	envFlag := cli.Flag("env", "Override "+config.EnvVar).Short('e').String()

	showCmd := cli.Command("show", "Print the resolved configuration as JSON").Default()
	activeOnly := showCmd.Flag("active", "Only print the active environment").Bool()

	envCmd := cli.Command("env", "Print the active environment")

	checkCmd := cli.Command("check", "Resolve config for each directory and report")
	checkDirs := checkCmd.Arg("dirs", "Directories to check").Required().ExistingDirs()
	checkLimit := checkCmd.Flag("parallel", "Maximum concurrent checks").Default("4").Int()

	serveCmd := cli.Command("serve", "Serve the resolved configuration over HTTP")
	useVault := serveCmd.Flag("vault", "Resolve vault: references before serving").Bool()

	cmd := kingpin.MustParse(cli.Parse(os.Args[1:]))

	a := &app{dir: *dir, env: *envFlag, out: os.Stdout}
	if a.dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "appconf: working directory: %v\n", err)
			os.Exit(1)
		}
		a.dir = wd
	}

	s, err := settings.Load(a.dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "appconf: %v\n", err)
		os.Exit(1)
	}
	a.settings = s

	log, err := logger.New(logger.Options{
		Dir:     s.Log.Dir,
		Level:   s.Log.Level,
		Console: s.Log.Console && runningInTTY(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "appconf: start logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	a.log = log

	switch cmd {
	case showCmd.FullCommand():
		err = a.show(*activeOnly)
	case envCmd.FullCommand():
		err = a.printEnv()
	case checkCmd.FullCommand():
		err = a.check(*checkDirs, *checkLimit)
	case serveCmd.FullCommand():
		ctx, cancel := context.WithCancel(context.Background())
		err = a.serve(ctx, *useVault)
		cancel()
	}

	if err != nil {
		log.Errorw("appconf failed", "cmd", cmd, "kind", config.Kind(err), "err", err)
		_ = log.Sync()
		os.Exit(1)
	}
}
