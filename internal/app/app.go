package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"marketpulse/internal/assets"
	"marketpulse/internal/config"
	"marketpulse/internal/infrastructure/feed"
	"marketpulse/internal/infrastructure/market"
	"marketpulse/internal/infrastructure/page"
	"marketpulse/internal/infrastructure/push"
	"marketpulse/internal/logging"
	"marketpulse/internal/scanner"
	"marketpulse/internal/sources"
	"marketpulse/internal/usecase"
)

// Application wires configs to the engine components and lifecycle
// orchestration.
type Application struct {
	cfg  config.Config
	log  *slog.Logger
	loop *usecase.Loop
	hub  *push.Hub
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	marketClient := market.NewClient(market.Config{
		BaseURL:   cfg.Market.BaseURL,
		APIKey:    cfg.Market.APIKey,
		APISecret: cfg.Market.APISecret,
	}, logging.Component(baseLogger, "market"))

	registry := scanner.NewRegistry()
	registry.Register(feed.NewScanner(nil, logging.Component(baseLogger, "scanner.feed")))
	registry.Register(page.NewScanner(
		page.NewChromeRenderer(cfg.Render.Timeout()),
		logging.Component(baseLogger, "scanner.page"),
	))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry: registry,
		Sources:  sources.All(),
		Market:   marketClient,
		Logger:   logging.Component(baseLogger, "pipeline"),
	})

	screener := usecase.NewScreener(marketClient, logging.Component(baseLogger, "screener"))

	app := &Application{cfg: cfg, log: baseLogger}

	app.loop = usecase.NewLoop(usecase.LoopDeps{
		Pipeline:          pipeline,
		Screener:          screener,
		Symbols:           assets.Pairs(),
		Logger:            logging.Component(baseLogger, "loop"),
		NewsInterval:      cfg.Refresh.NewsInterval(),
		ScreeningInterval: cfg.Refresh.ScreeningInterval(),
	})
	app.hub = push.NewHub(app.loop, logging.Component(baseLogger, "push"))
	app.loop.SetPublisher(app.hub)

	return app
}

// Run serves the push channel until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", a.hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	a.log.Info("listening", "addr", a.cfg.Server.Addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	a.loop.Stop()
	a.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
