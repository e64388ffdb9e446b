// Package bootstrap arma las dependencias compartidas por los ejecutables.
package bootstrap

import (
	"context"
	"fmt"

	"cinematch/internal/catalog"
	"cinematch/internal/config"
	"cinematch/internal/logging"
	"cinematch/pkg/database"
)

// LoadCatalog carga el catálogo desde la fuente configurada (archivo o Mongo).
// La conexión a Mongo solo vive mientras dura la carga.
func LoadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	switch cfg.Data.Source {
	case config.SourceMongo:
		logging.Info().Str("uri", cfg.Mongo.URI).Str("database", cfg.Mongo.Database).Msg("conectando a MongoDB")
		client, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("conectando a MongoDB: %w", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		return catalog.Load(ctx, database.MongoSource{DB: client.Database(cfg.Mongo.Database)})
	case config.SourceFile:
		return catalog.Load(ctx, FileSource(cfg))
	default:
		return nil, fmt.Errorf("fuente de datos desconocida %q", cfg.Data.Source)
	}
}

// FileSource arma la fuente de archivos a partir de la configuración.
func FileSource(cfg *config.Config) catalog.FileSource {
	return catalog.FileSource{
		MoviesPath:     cfg.Data.MoviesPath,
		SimilarityPath: cfg.Data.SimilarityPath,
	}
}
