package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"opp/internal/adapter/jsonstore"
	"opp/internal/config"
	httphandler "opp/internal/handler/http"
	"opp/internal/service/visitor"
)

const shutdownTimeout = 5 * time.Second

// App wires the visitor-facing web server: JSON-file datastore, visitor
// use case, HTTP handlers. Administration happens through the opp CLI
// against the same datastore directory.
type App struct {
	cfgPath string
	cfg     *config.Config
	srv     *http.Server
	log     *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

func (a *App) Start() {
	a.cfg = config.MustLoad(a.cfgPath)

	lo := &slog.HandlerOptions{}
	switch a.cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo))
	a.log = log

	store, err := jsonstore.New(a.cfg.Store.DataDir, log)
	if err != nil {
		panic(err)
	}

	vSrv := visitor.NewVisitorService(store, log)

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", httphandler.NewHomeHandler(a.cfg.URL, vSrv, log))
	mux.Handle("GET /podcast.xml", httphandler.NewFeedHandler(a.cfg.URL, store.Fs(), vSrv, log))
	mux.Handle("GET /podcast.json", httphandler.NewPodcastHandler(vSrv, log))
	mux.Handle("GET /episode/{guid}", httphandler.NewEpisodeHandler(store.Fs(), vSrv, log))

	a.srv = &http.Server{
		Addr:    a.cfg.Listen,
		Handler: mux,
	}

	go func() {
		log.Info("Start listen", slog.String("addr", a.cfg.Listen), slog.String("data_dir", a.cfg.Store.DataDir))

		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.srv.Shutdown(ctx)
}
