package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinematch/internal/api"
	"cinematch/internal/bootstrap"
	"cinematch/internal/config"
	"cinematch/internal/logging"
	"cinematch/internal/metrics"
	"cinematch/internal/recommender"
	"cinematch/internal/tmdb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("no se pudo cargar la configuración")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------------------------------------
	// Carga única del catálogo
	// --------------------------------------------------

	cat, err := bootstrap.LoadCatalog(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("no se pudo cargar el catálogo")
	}
	metrics.CatalogMovies.Set(float64(cat.Len()))

	if cfg.TMDB.APIKey == "" {
		logging.Warn().Msg("TMDB_API_KEY vacío: todos los pósters serán placeholder")
	}
	posters := tmdb.New(cfg.TMDB)
	rec := recommender.New(cat, posters, cfg.Recommend.Count)

	// --------------------------------------------------
	// Servidor HTTP
	// --------------------------------------------------

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(cfg.Server, api.NewHandler(rec, cat.Titles())),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Int("movies", cat.Len()).Msg("API escuchando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("servidor HTTP detenido")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("apagando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("apagado forzado")
	}
}
