package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/vbonduro/lunchroulette/internal/config"
	"github.com/vbonduro/lunchroulette/internal/describe"
	claudedescribe "github.com/vbonduro/lunchroulette/internal/describe/claude"
	geminidescribe "github.com/vbonduro/lunchroulette/internal/describe/gemini"
	ollamadescribe "github.com/vbonduro/lunchroulette/internal/describe/ollama"
	openaidescribe "github.com/vbonduro/lunchroulette/internal/describe/openai"
	"github.com/vbonduro/lunchroulette/internal/domain"
	"github.com/vbonduro/lunchroulette/internal/logging"
	"github.com/vbonduro/lunchroulette/internal/metrics"
	"github.com/vbonduro/lunchroulette/internal/places/google"
	"github.com/vbonduro/lunchroulette/internal/service"
	"github.com/vbonduro/lunchroulette/internal/web"
	"github.com/vbonduro/lunchroulette/internal/web/templates"
)

func main() {
	envFileFlag := &cli.StringFlag{
		Name:  "env-file",
		Usage: "dotenv file to load before reading the environment",
		Value: ".env",
	}

	app := cli.App{
		Name:  "lunchroulette",
		Usage: "pick a random rated restaurant nearby",
		Flags: []cli.Flag{envFileFlag},
		Commands: []*cli.Command{{
			Name:  "serve",
			Usage: "run the web UI",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "addr", Usage: "listen address (overrides LISTEN_ADDR)"},
			},
			Action: withApp(serve),
		}, {
			Name:  "pick",
			Usage: "run one search and print the result",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "radius", Usage: "search radius in meters (clamped to 100-5000)"},
				&cli.StringFlag{Name: "cuisine", Usage: "all, korean, japanese, chinese, western or snack", Value: "all"},
				&cli.Float64Flag{Name: "lat", Usage: "center latitude (defaults to CENTER_LAT)"},
				&cli.Float64Flag{Name: "lng", Usage: "center longitude (defaults to CENTER_LNG)"},
				&cli.DurationFlag{Name: "timeout", Usage: "give up after this long", Value: 30 * time.Second},
			},
			Action: withApp(pick),
		}},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// application holds everything built from config that the commands share.
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	places   *google.Client
	engine   *service.SelectionEngine
	registry *prometheus.Registry
}

func withApp(fn func(*application, *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load(c.String("env-file"))
		if err != nil {
			return err
		}

		logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer cleanup()

		a, err := newApplication(c.Context, cfg, logger)
		if err != nil {
			return err
		}
		return fn(a, c)
	}
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	logger.Info("api keys",
		"google_maps", config.KeyPrefix(cfg.GoogleMapsAPIKey),
		"generation_backend", cfg.GenerationBackend,
		"generation", config.KeyPrefix(cfg.GenerationAPIKey()),
	)

	describer, err := newDescriber(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := google.NewClient(cfg.GoogleMapsAPIKey, cfg.PlacesBaseURL, cfg.Language)
	engine := service.NewSelectionEngine(
		service.Credentials{MapsAPIKey: cfg.GoogleMapsAPIKey, GenerationAPIKey: cfg.GenerationAPIKey()},
		client,
		describer,
		nil,
		logger,
		metrics.New(reg),
	)

	return &application{cfg: cfg, logger: logger, places: client, engine: engine, registry: reg}, nil
}

// newDescriber picks the text generation backend. A backend without its key
// yields nil; searches then fail with a configuration error instead of the
// process refusing to start.
func newDescriber(ctx context.Context, cfg *config.Config, logger *slog.Logger) (describe.Describer, error) {
	if cfg.GenerationAPIKey() == "" {
		logger.Warn("no text generation key configured", "backend", cfg.GenerationBackend)
		return nil, nil
	}

	switch cfg.GenerationBackend {
	case config.BackendClaude:
		logger.Info("using Claude text generation backend")
		return claudedescribe.NewClaudeDescriber(cfg.ClaudeAPIKey, cfg.ClaudeModel), nil
	case config.BackendGemini:
		logger.Info("using Gemini text generation backend")
		d, err := geminidescribe.NewGeminiDescriber(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, "")
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return d, nil
	case config.BackendOllama:
		logger.Info("using Ollama text generation backend", "model", cfg.OllamaModel)
		return ollamadescribe.NewOllamaDescriber(cfg.OllamaHost, cfg.OllamaModel), nil
	default:
		logger.Info("using OpenAI text generation backend", "model", cfg.OpenAIModel)
		return openaidescribe.NewOpenAIDescriber(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	}
}

func serve(a *application, c *cli.Context) error {
	addr := a.cfg.ListenAddr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}

	session := service.NewSession(a.engine, a.cfg.InitialCriteria(), a.logger)
	metricsHandler := promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
	server := web.NewServer(session, a.places, templates.FS, metricsHandler, a.logger)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, addr)
}

func pick(a *application, c *cli.Context) error {
	cuisine, err := domain.ParseCuisine(c.String("cuisine"))
	if err != nil {
		return err
	}

	criteria := a.cfg.InitialCriteria()
	if c.IsSet("radius") {
		criteria = criteria.WithRadius(c.Int("radius"))
	}
	if c.IsSet("lat") {
		criteria.Center.Lat = c.Float64("lat")
	}
	if c.IsSet("lng") {
		criteria.Center.Lng = c.Float64("lng")
	}
	criteria = criteria.WithCuisine(cuisine)

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	result := a.engine.Search(ctx, criteria)
	if err := renderCard(os.Stdout, result); err != nil {
		return err
	}
	if result.State == domain.StateFailure {
		return cli.Exit("", 1)
	}
	return nil
}
