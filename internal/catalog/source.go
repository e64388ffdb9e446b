package catalog

import (
	"context"
	"fmt"
	"time"

	"cinematch/internal/logging"
)

// Source entrega los dos artefactos crudos: tabla de películas y matriz.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Movie, [][]float64, error)
}

// Load lee la fuente una sola vez y construye el Catalog.
// Cualquier error aquí es fatal para el proceso; no se reintenta.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	start := time.Now()

	movies, matrix, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("cargando catálogo desde %s: %w", src.Name(), err)
	}

	c, err := New(movies, matrix)
	if err != nil {
		return nil, fmt.Errorf("cargando catálogo desde %s: %w", src.Name(), err)
	}

	logging.Info().
		Str("source", src.Name()).
		Int("movies", c.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("catálogo cargado")
	return c, nil
}
