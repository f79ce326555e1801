// cmd/writon/root.go
package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"writon/internal/api"
	"writon/internal/config"
	"writon/internal/db"
	"writon/internal/logging"
	"writon/internal/prefs"
	"writon/internal/session"
	"writon/internal/ui"
)

// globals holds the persistent flags and what PersistentPreRunE builds from them
type globals struct {
	configPath string
	server     string
	timeout    int
	verbose    bool

	settings *config.Config
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "writon",
		Short: "Grammar, translation and summaries from your terminal",
		Long: `writon sends text to a Writon API server for grammar correction, translation,
summarization or general rewriting, using your own LLM provider key.

Run without arguments to start the interactive TUI.

Examples:
  writon                                   # Start the TUI
  writon process "Ths is a tset."          # Fix grammar, print the result
  writon process -f essay.md --mode summarize
  echo "Bonjour" | writon process --mode translate --lang English
  writon config set provider openai
  writon watch draft.txt -o out/           # Reprocess on every save`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runTUI()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "Settings file (default: "+config.ConfigPath()+")")
	flags.StringVar(&g.server, "server", "", "API server URL (overrides server.url)")
	flags.IntVar(&g.timeout, "timeout", -1, "Request timeout in seconds, 0 disables (overrides server.timeout)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newProcessCmd(g),
		newHealthCmd(g),
		newUploadCmd(g),
		newProvidersCmd(g),
		newConfigCmd(g),
		newHistoryCmd(g),
		newWatchCmd(g),
	)
	return root
}

// load reads .env and the settings file, then applies flag overrides
func (g *globals) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFrom(g.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if g.server != "" {
		cfg.Server.URL = g.server
	}
	if cmd.Flags().Changed("timeout") {
		if g.timeout < 0 {
			return fmt.Errorf("--timeout must be zero or positive")
		}
		cfg.SetTimeout(g.timeout)
	}
	g.settings = cfg
	return nil
}

func (g *globals) settingsPath() string {
	if g.configPath != "" {
		return g.configPath
	}
	return config.ConfigPath()
}

// env is everything a command needs, opened from the settings
type env struct {
	settings *config.Config
	log      *zap.Logger
	db       *db.Store
	prefs    *prefs.Store
	client   *api.Client
}

// open builds the logger, database, preference store and API client. The
// TUI owns the terminal, so its logs always go to a file.
func (g *globals) open(tui bool) (*env, error) {
	cfg := g.settings

	logOpts := logging.Options{Level: cfg.Logging.Level, Verbose: g.verbose, File: cfg.Logging.File}
	if logOpts.File == "" {
		if tui {
			dir, err := db.DataDir()
			if err != nil {
				return nil, err
			}
			logOpts.File = filepath.Join(dir, "writon.log")
		} else if !g.verbose {
			logOpts.Level = "warn"
		}
	}
	log, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	store, err := db.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storeOpts := []prefs.Option{
		prefs.WithLogger(log.Named("prefs")),
		prefs.WithScratchDelay(cfg.ScratchDelay()),
	}
	if cfg.Storage.Keyring {
		dir, err := db.DataDir()
		if err != nil {
			store.Close()
			return nil, err
		}
		kr, err := prefs.OpenKeyring(cfg.Storage.KeyringBackend, filepath.Join(dir, "keyring"), cfg.Storage.KeyringPassphrase)
		if err != nil {
			store.Close()
			return nil, err
		}
		storeOpts = append(storeOpts, prefs.WithSecrets(kr))
	}

	log.Debug("starting",
		zap.String("server", cfg.Server.URL),
		zap.Duration("timeout", cfg.RequestTimeout()),
		zap.Bool("keyring", cfg.Storage.Keyring))

	return &env{
		settings: cfg,
		log:      log,
		db:       store,
		prefs:    prefs.NewStore(store, storeOpts...),
		client:   api.New(cfg.Server.URL, cfg.RequestTimeout(), api.WithLogger(log.Named("api"))),
	}, nil
}

// controller builds a session over the env's storage and client
func (e *env) controller(opts ...session.Option) *session.Controller {
	base := []session.Option{
		session.WithHistory(e.db),
		session.WithLogger(e.log.Named("session")),
		session.WithHealthDelay(e.settings.HealthDelay()),
	}
	return session.New(e.prefs, e.client, append(base, opts...)...)
}

func (e *env) Close() {
	e.prefs.Flush()
	if err := e.db.Close(); err != nil {
		e.log.Warn("close database", zap.Error(err))
	}
	_ = e.log.Sync()
}

func (g *globals) runTUI() error {
	e, err := g.open(true)
	if err != nil {
		return err
	}
	defer e.Close()

	relay := &ui.Relay{}
	ctrl := e.controller(session.OnConnectivity(relay.Connectivity))
	defer ctrl.Close()

	start := time.Now()
	err = ui.Run(ui.Options{
		Controller: ctrl,
		Server:     e.client,
		History:    e.db,
		Log:        e.log.Named("ui"),
		ExportDir:  ".",
	}, relay)
	e.log.Info("session ended", zap.Duration("uptime", time.Since(start)))
	return err
}
