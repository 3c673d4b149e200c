package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haystackd/haystackd/internal/config"
	"github.com/haystackd/haystackd/internal/search"
	"github.com/haystackd/haystackd/internal/server"
	"github.com/haystackd/haystackd/internal/watcher"
)

// serveOptions holds the CLI flags for serve. Flag names keep the
// historical launcher surface.
type serveOptions struct {
	configPath       string
	serverConfigPath string
	algorithm        string
	port             int
	sslEnabled       bool
	rereadOnQuery    bool
	certFile         string
	keyFile          string
	watch            bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the search server",
		Long: `Start the TCP search server.

The mandatory --config file is the minimal key=value source and must
contain linuxpath=<path-to-corpus>. The optional --server_config YAML file
provides the extended settings; command-line flags override both.

Examples:
  haystackd serve --config config.txt
  haystackd serve --config config.txt --search_algorithm set --port 44445
  haystackd serve --config config.txt --ssl_enabled --certfile tls.crt --keyfile tls.key`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to the minimal key=value config (required)")
	cmd.Flags().StringVar(&opts.serverConfigPath, "server_config", "", "Path to the extended YAML server config")
	cmd.Flags().StringVar(&opts.algorithm, "search_algorithm", "", "Search algorithm: linear, set, ahocorasick, boyermoore, rabinkarp, regex")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Port to bind the server to")
	cmd.Flags().BoolVar(&opts.sslEnabled, "ssl_enabled", false, "Enable TLS")
	cmd.Flags().BoolVar(&opts.rereadOnQuery, "reread_on_query", false, "Re-read the corpus file before every query")
	cmd.Flags().StringVar(&opts.certFile, "certfile", "", "Path to the TLS certificate file")
	cmd.Flags().StringVar(&opts.keyFile, "keyfile", "", "Path to the TLS private key file")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload the corpus when the file changes (ignored with --reread_on_query)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts serveOptions) error {
	logger, cleanup, err := newLogger()
	if err != nil {
		return err
	}
	defer cleanup()

	overrides := config.Overrides{
		Port:             opts.port,
		PortSet:          cmd.Flags().Changed("port"),
		SSLEnabled:       opts.sslEnabled,
		SSLEnabledSet:    cmd.Flags().Changed("ssl_enabled"),
		RereadOnQuery:    opts.rereadOnQuery,
		RereadOnQuerySet: cmd.Flags().Changed("reread_on_query"),
		CertFile:         opts.certFile,
		KeyFile:          opts.keyFile,
		Algorithm:        opts.algorithm,
		WatchCorpus:      opts.watch,
		WatchCorpusSet:   cmd.Flags().Changed("watch"),
	}

	cfg, err := config.Resolve(opts.configPath, opts.serverConfigPath, overrides, logger)
	if err != nil {
		logger.Error("fatal: config resolution failed", slog.String("error", err.Error()))
		return err
	}

	engine := search.New(cfg.Algorithm, cfg.CorpusPath, logger)

	// The startup load validates corpus readability in every freshness
	// mode; serving must never begin against a file that cannot be read.
	if err := engine.Reload(); err != nil {
		logger.Error("fatal: corpus load failed",
			slog.String("path", cfg.CorpusPath),
			slog.String("error", err.Error()))
		return err
	}
	logger.Info("corpus loaded", slog.String("path", cfg.CorpusPath))

	policy := search.ReloadNever
	switch {
	case cfg.RereadOnQuery:
		policy = search.ReloadEveryQuery
	case cfg.WatchCorpus:
		policy = search.ReloadOnChange
	}
	reloader := search.NewReloader(engine, policy, logger)
	logger.Info("reload policy", slog.String("policy", policy.String()))

	if policy == search.ReloadOnChange {
		w, err := watcher.New(cfg.CorpusPath, watcher.DefaultDebounce, logger)
		if err != nil {
			// Degrades to the cached-once behavior; never fatal.
			logger.Warn("corpus watch unavailable, serving cached corpus",
				slog.String("error", err.Error()))
		} else {
			go w.Start(ctx)
			go func() {
				for range w.Events() {
					reloader.MarkStale()
				}
			}()
		}
	}

	srv, err := server.New(cfg, reloader, logger)
	if err != nil {
		logger.Error("fatal: server setup failed", slog.String("error", err.Error()))
		return err
	}
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("fatal: server failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}
