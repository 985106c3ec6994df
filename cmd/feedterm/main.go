package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/docopt/docopt-go"
	"github.com/golang/glog"

	"github.com/jask/feedterm/internal/api"
	"github.com/jask/feedterm/internal/auth"
	"github.com/jask/feedterm/internal/config"
	"github.com/jask/feedterm/internal/database"
	"github.com/jask/feedterm/internal/database/repository"
	"github.com/jask/feedterm/internal/service"
	"github.com/jask/feedterm/internal/transport"
	"github.com/jask/feedterm/internal/tui"
)

// Version is set at build time.
var Version = "0.0.0-local"

const usage = `feedterm, a terminal client for the nakama timeline.

Usage:
    feedterm login <email> [options]
    feedterm logout [options]
    feedterm [<location>] [options]
    feedterm -h | --help
    feedterm --version

The location is where the client starts, e.g. /users/john or /posts/12.

Options:
    -h --help                  Show this screen.
    --version                  Show version.
    --config=<path>            Config file (default ~/.config/feedterm/config.toml).
    --server=<url>             Server url, overrides server.url.
    --log-dir=<dir>            Log directory, overrides log.dir.
    -v --verbosity=<level>     Log verbosity, overrides log.verbosity.`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], Version)
	if err != nil {
		panic(err)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	if err := setupLogging(cfg.Log); err != nil {
		glog.Exitf("logging: %v", err)
	}
	defer glog.Flush()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := openDB(cfg.Database.Path)
	if err != nil {
		glog.Exitf("database: %v", err)
	}
	defer db.Close()

	store := auth.NewStore(auth.RepoPersister{Repo: repository.NewSessionRepo(db)})
	if err := store.Restore(ctx); err != nil {
		glog.Warningf("restore session: %v", err)
	}

	tc, err := transport.New(cfg.Server.URL, store,
		transport.WithTimeout(cfg.Server.Timeout),
		transport.WithStreamKind(transport.StreamKind(strings.ToLower(cfg.Stream.Transport))),
		transport.WithReconnectDelay(cfg.Stream.ReconnectDelay),
	)
	if err != nil {
		glog.Exitf("transport: %v", err)
	}
	client := api.New(tc, store)
	sessions := &service.Sessions{API: client, Store: store}

	if login, _ := opts.Bool("login"); login {
		email, _ := opts.String("<email>")
		sess, err := sessions.Login(ctx, email)
		if err != nil {
			glog.Exitf("login: %v", err)
		}
		fmt.Printf("logged in as @%s\n", sess.Username)
		return
	}
	if logout, _ := opts.Bool("logout"); logout {
		if err := sessions.Logout(ctx); err != nil {
			glog.Exitf("logout: %v", err)
		}
		fmt.Println("logged out")
		return
	}

	start := cfg.UI.StartPath
	if location, ok := opts["<location>"].(string); ok && location != "" {
		start = location
	}
	shell, err := tui.New(ctx, tui.Deps{
		API:        client,
		Sessions:   sessions,
		Viewer:     store,
		PageSize:   cfg.Timeline.PageSize,
		DateFormat: cfg.UI.DateFormat,
	}, start)
	if err != nil {
		glog.Exitf("routes: %v", err)
	}
	defer shell.Close()

	p := tea.NewProgram(shell, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		glog.Errorf("tui: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(opts docopt.Opts) (config.Config, error) {
	path, _ := opts["--config"].(string)
	if path == "" {
		path = os.Getenv("FEEDTERM_CONFIG")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if server, ok := opts["--server"].(string); ok && server != "" {
		cfg.Server.URL = server
	}
	if dir, ok := opts["--log-dir"].(string); ok && dir != "" {
		cfg.Log.Dir = dir
	}
	if v, ok := opts["--verbosity"].(string); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("--verbosity: %w", err)
		}
		cfg.Log.Verbosity = n
	}
	return cfg, cfg.Validate()
}

// setupLogging points glog at files under cfg.Dir. The terminal belongs to
// the TUI, so only fatal lines reach stderr.
func setupLogging(cfg config.LogConfig) error {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return err
	}
	for name, value := range map[string]string{
		"log_dir":         cfg.Dir,
		"v":               strconv.Itoa(cfg.Verbosity),
		"logtostderr":     "false",
		"alsologtostderr": "false",
		"stderrthreshold": "FATAL",
	} {
		if err := flag.Set(name, value); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return flag.CommandLine.Parse(nil)
}

func openDB(path string) (*sql.DB, error) {
	if err := database.RunMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return database.Open(path)
}
