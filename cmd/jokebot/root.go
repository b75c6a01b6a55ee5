package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/jokegraph/config"
	"github.com/dshills/jokegraph/console"
	"github.com/dshills/jokegraph/graph"
	"github.com/dshills/jokegraph/graph/emit"
	"github.com/dshills/jokegraph/graph/model/anthropic"
	"github.com/dshills/jokegraph/graph/model/google"
	"github.com/dshills/jokegraph/graph/model/openai"
	"github.com/dshills/jokegraph/graph/store"
	"github.com/dshills/jokegraph/internal/logging"
	"github.com/dshills/jokegraph/jokebot"
	"github.com/dshills/jokegraph/jokes"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jokebot",
		Short: "Jokebot tells jokes from a menu-driven state graph",
		Long: `Jokebot is an interactive joke teller. Each menu action is a node of a
state graph; the engine routes between them until you quit or the step
bound is reached.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runSession(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file")
	pf.String("history-driver", "", "Step journal driver: memory, sqlite or mysql")
	pf.String("history-dsn", "", "Step journal DSN (file path for sqlite)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-format", "", "Log format: console or json")

	f := cmd.Flags()
	f.Int("max-steps", 0, "Maximum node invocations per session")
	f.String("language", "", "Initial joke language (en, de, es, fr)")
	f.String("category", "", "Initial joke category (neutral, chuck, all)")
	f.String("provider", "", "Joke provider: catalog, anthropic, openai or google")
	f.String("model", "", "Model name for LLM providers")
	f.Bool("log-events", false, "Log engine events at debug level")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	f.String("otlp-endpoint", "", "Export traces to this OTLP/HTTP endpoint URL")

	cmd.AddCommand(newGraphCmd(), newHistoryCmd())
	return cmd
}

// loadConfig reads the config file and environment, then applies the flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	strs := map[string]*string{
		"language":       &cfg.Language,
		"category":       &cfg.Category,
		"provider":       &cfg.Provider.Name,
		"model":          &cfg.Provider.Model,
		"log-level":      &cfg.Log.Level,
		"log-format":     &cfg.Log.Format,
		"metrics-addr":   &cfg.Metrics.Addr,
		"otlp-endpoint":  &cfg.Tracing.OTLPEndpoint,
		"history-driver": &cfg.History.Driver,
		"history-dsn":    &cfg.History.DSN,
	}
	for name, dst := range strs {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps, _ = flags.GetInt("max-steps")
	}
	if flags.Changed("log-events") {
		cfg.Log.Events, _ = flags.GetBool("log-events")
	}
	if flags.Changed("provider") {
		// Prefer the conventional key variable of the provider picked on the
		// command line over a key resolved for the configured one.
		if v := os.Getenv(config.APIKeyEnv(cfg.Provider.Name)); v != "" {
			cfg.Provider.APIKey = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runSession plays one joke bot session and prints its summary. A session
// cut short by the step bound or a failing node returns that error.
func runSession(ctx context.Context, cfg config.Config, in io.Reader, out, errOut io.Writer) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, errOut)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	src, closeSource, err := newSource(ctx, cfg.Provider)
	if err != nil {
		return err
	}
	defer closeSource()

	registry := prometheus.NewRegistry()
	tel, err := startTelemetry(ctx, cfg, registry, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	st, err := openHistory(cfg.History)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	con := console.New(in, out)
	bot := jokebot.New(con, src, jokebot.WithLogger(logger))
	g, err := bot.Build()
	if err != nil {
		return err
	}

	var emitters []emit.Emitter
	if cfg.Log.Events {
		emitters = append(emitters, emit.NewZapEmitter(logger.Named("engine")))
	}
	if tracer := tel.Tracer(); tracer != nil {
		emitters = append(emitters, emit.NewOTelEmitter(tracer))
	}
	opts := []graph.Option{
		graph.WithMetrics(graph.NewPrometheusMetrics(registry)),
		graph.WithEmitter(emit.NewMultiEmitter(emitters...)),
	}
	if st != nil {
		opts = append(opts, graph.WithStore(st))
	}
	engine := graph.New(g, opts...)

	initial, err := jokebot.InitialState(g.Schema(), cfg.Category, cfg.Language)
	if err != nil {
		return err
	}

	logger.Debug("session started",
		zap.String("provider", cfg.Provider.Name),
		zap.String("category", cfg.Category),
		zap.String("language", cfg.Language),
		zap.Int("max_steps", cfg.MaxSteps))

	con.Banner()
	res, runErr := engine.Execute(ctx, initial, cfg.MaxSteps)

	summary := console.Summary{
		JokesTold: len(jokebot.Told(res.State)),
		Category:  cfg.Category,
		Language:  cfg.Language,
		Steps:     res.Steps,
		Err:       runErr,
	}
	if !res.State.IsZero() {
		summary.Category = jokebot.Category(res.State)
		summary.Language = jokebot.Language(res.State)
	}
	con.PrintSummary(summary)

	fields := []zap.Field{zap.String("run_id", res.RunID), zap.Int("steps", res.Steps), zap.Int("jokes", summary.JokesTold)}
	if runErr != nil {
		logger.Error("session aborted", append(fields, zap.Error(runErr))...)
		return runErr
	}
	logger.Debug("session finished", fields...)
	return nil
}

// newSource returns the joke source for the provider and a func releasing it.
func newSource(ctx context.Context, p config.ProviderConfig) (jokes.Source, func(), error) {
	noop := func() {}
	switch p.Name {
	case config.ProviderCatalog, "":
		return jokes.NewCatalog(), noop, nil
	case config.ProviderAnthropic:
		return jokes.NewModelSource(anthropic.NewChatModel(p.APIKey, p.Model)), noop, nil
	case config.ProviderOpenAI:
		return jokes.NewModelSource(openai.NewChatModel(p.APIKey, p.Model)), noop, nil
	case config.ProviderGoogle:
		m, err := google.NewChatModel(ctx, p.APIKey, p.Model)
		if err != nil {
			return nil, nil, err
		}
		return jokes.NewModelSource(m), func() { _ = m.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", p.Name)
	}
}

// openHistory opens the step journal. It returns a nil store when the
// journal is disabled.
func openHistory(h config.HistoryConfig) (store.Store, error) {
	switch h.Driver {
	case "":
		return nil, nil
	case config.HistoryMemory:
		return store.NewMemStore(), nil
	default:
		st, err := store.Open(h.Driver, h.DSN)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		return st, nil
	}
}
