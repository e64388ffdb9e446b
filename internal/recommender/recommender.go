// Package recommender une el catálogo, el ranking kNN y los pósters.
package recommender

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"cinematch/internal/catalog"
	"cinematch/internal/knn"
	"cinematch/internal/logging"
	"cinematch/internal/metrics"
)

// DefaultCount es la cantidad de recomendaciones por consulta.
const DefaultCount = 5

// PosterFetcher resuelve un id externo a una URL de imagen. Nunca falla:
// ante error devuelve un placeholder.
type PosterFetcher interface {
	FetchPoster(ctx context.Context, movieID int) string
}

// Recommendation es un título sugerido con su póster.
type Recommendation struct {
	MovieID   int     `json:"id"`
	Title     string  `json:"title"`
	PosterURL string  `json:"poster_url"`
	Score     float64 `json:"score"`
}

type Recommender struct {
	catalog *catalog.Catalog
	posters PosterFetcher
	count   int
	log     zerolog.Logger
}

func New(c *catalog.Catalog, posters PosterFetcher, count int) *Recommender {
	if count < 1 {
		count = DefaultCount
	}
	return &Recommender{
		catalog: c,
		posters: posters,
		count:   count,
		log:     logging.With("recommender"),
	}
}

// Catalog expone el catálogo de solo lectura (lista de títulos para la UI).
func (r *Recommender) Catalog() *catalog.Catalog { return r.catalog }

// Recommend devuelve las películas más similares a title, en orden de
// similitud no creciente y sin incluir a title.
//
// Un título inexistente devuelve catalog.ErrUnknownTitle. Los pósters se
// resuelven uno tras otro.
func (r *Recommender) Recommend(ctx context.Context, title string) ([]Recommendation, error) {
	start := time.Now()

	idx, err := r.catalog.IndexOf(title)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("unknown_title").Inc()
		return nil, err
	}

	row := r.catalog.Row(idx)
	if !knn.SelfIsMax(row, idx) {
		r.log.Warn().Str("title", title).Int("row", idx).Msg("la película consultada no tiene la similitud máxima de su fila")
	}

	// un título repetido en otra fila tampoco cuenta como recomendación
	neighbors := knn.TopKFunc(row, r.count, func(i int) bool {
		return i == idx || r.catalog.Movie(i).Title == title
	})
	recs := make([]Recommendation, 0, len(neighbors))
	for _, nb := range neighbors {
		m := r.catalog.Movie(nb.Index)
		recs = append(recs, Recommendation{
			MovieID:   m.ID,
			Title:     m.Title,
			PosterURL: r.posters.FetchPoster(ctx, m.ID),
			Score:     nb.Similarity,
		})
	}

	elapsed := time.Since(start)
	metrics.RecommendRequests.WithLabelValues("ok").Inc()
	metrics.RecommendDuration.Observe(elapsed.Seconds())
	r.log.Info().Str("title", title).Int("results", len(recs)).Dur("elapsed", elapsed).Msg("recomendación generada")

	return recs, nil
}
