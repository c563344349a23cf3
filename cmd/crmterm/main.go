package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	aiservice "github.com/nhle/crmterm/internal/ai"
	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/app"
	"github.com/nhle/crmterm/internal/credential"
	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/service"
	"github.com/nhle/crmterm/internal/store"
	"github.com/nhle/crmterm/internal/theme"
)

const usageText = `crmterm - terminal client for the CRM backend

Usage:
  crmterm [flags]                 start the terminal UI
  crmterm [flags] login           sign in without starting the UI
  crmterm [flags] status          print session, inbox and AI status as YAML
  crmterm [flags] mailcheck ...   probe IMAP/SMTP settings from this machine

Flags:
`

func main() {
	os.Exit(run())
}

// run does the work of main and returns the exit code, so deferred
// cleanup runs before the process exits.
func run() int {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the config file")
	debug := flag.Bool("debug", false, "write a debug log next to the config file")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	closeLog, err := setupLogging(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open debug log: %v\n", err)
		return 1
	}
	defer closeLog()

	args := flag.Args()

	// mailcheck talks to the mail servers directly and needs no backend.
	if len(args) > 0 && args[0] == "mailcheck" {
		if err := runMailcheck(context.Background(), args[1:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		return 0
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	env, err := openEnv(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer env.close()

	ctx := context.Background()
	switch {
	case len(args) == 0:
		err = runTUI(env, *configPath)
	case args[0] == "login":
		err = runLogin(ctx, env, args[1:], os.Stdout)
	case args[0] == "status":
		err = runStatus(ctx, env, os.Stdout)
	default:
		flag.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

// setupLogging sends the log package to a file when debugging and
// silences it otherwise, since the terminal belongs to the UI.
func setupLogging(debug bool) (func(), error) {
	if !debug {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	if err := os.MkdirAll(model.ConfigDir(), 0o700); err != nil {
		return nil, err
	}
	f, err := tea.LogToFile(filepath.Join(model.ConfigDir(), "debug.log"), "crmterm")
	if err != nil {
		return nil, err
	}
	return func() {
		log.SetOutput(io.Discard)
		f.Close()
	}, nil
}

// env holds everything the UI and the subcommands share.
type env struct {
	cfg        *model.AppConfig
	store      *store.SQLiteStore
	session    *credential.Session
	client     *api.Client
	services   *service.Services
	assistant  *aiservice.Assistant
	translator *i18n.Translator
}

func openEnv(cfg *model.AppConfig) (*env, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	keys, err := credential.Open(model.ConfigDir())
	if err != nil {
		s.Close()
		return nil, err
	}

	tr, err := i18n.New(cfg.Display.Language)
	if err != nil {
		log.Printf("loading language %q: %v", cfg.Display.Language, err)
		tr = i18n.Must("en")
	}

	session := credential.NewSession(keys, s)
	client := api.NewClient(cfg.API, session)
	return &env{
		cfg:        cfg,
		store:      s,
		session:    session,
		client:     client,
		services:   service.New(client),
		assistant:  aiservice.New(client, s),
		translator: tr,
	}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		log.Printf("closing store: %v", err)
	}
}

func runTUI(e *env, configPath string) error {
	theme.Apply(e.cfg.Display.Theme)

	m := app.New(app.Deps{
		Config:     e.cfg,
		ConfigPath: configPath,
		Client:     e.client,
		Services:   e.services,
		Assistant:  e.assistant,
		Store:      e.store,
		Session:    e.session,
		Translator: e.translator,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
