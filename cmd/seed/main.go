// Comando seed: carga los artefactos de archivo y los publica en MongoDB
// para que la API pueda arrancar con DATA_SOURCE=mongo.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cinematch/internal/catalog"
	"cinematch/internal/config"
	"cinematch/internal/logging"
	"cinematch/pkg/database"
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

	moviesPath := flag.String("movies", cfg.Data.MoviesPath, "archivo de películas (csv o json)")
	simPath := flag.String("similarity", cfg.Data.SimilarityPath, "archivo de matriz de similitud (csv o json)")
	batch := flag.Int("batch", database.DefaultBatchSize, "documentos por InsertMany")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{moviesPath: *moviesPath, simPath: *simPath, batch: *batch}
	if err := run(ctx, cfg, opts); err != nil {
		logging.Fatal().Err(err).Msg("falló la carga en MongoDB")
	}
}

type options struct {
	moviesPath string
	simPath    string
	batch      int
}

// run devuelve error ante cualquier fallo para que el proceso termine con
// estado distinto de cero; una carga a medias no debe pasar por exitosa.
func run(ctx context.Context, cfg *config.Config, opts options) error {
	// --------------------------------------------------
	// Lectura y validación de artefactos
	// --------------------------------------------------

	cat, err := catalog.Load(ctx, catalog.FileSource{MoviesPath: opts.moviesPath, SimilarityPath: opts.simPath})
	if err != nil {
		return fmt.Errorf("artefactos inválidos: %w", err)
	}

	// --------------------------------------------------
	// Escritura en MongoDB
	// --------------------------------------------------

	client, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("conectando a MongoDB en %s: %w", cfg.Mongo.URI, err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := database.Seed(ctx, client.Database(cfg.Mongo.Database), cat, opts.batch); err != nil {
		return fmt.Errorf("sembrando %s: %w", cfg.Mongo.Database, err)
	}

	logging.Info().
		Int("movies", cat.Len()).
		Str("database", cfg.Mongo.Database).
		Msg("catálogo publicado en MongoDB")
	return nil
}
