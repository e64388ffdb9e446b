// Package metrics expone los colectores Prometheus del servicio.
//
// HTTP:
//   - http_requests_total{method,route,status}
//   - http_request_duration_seconds{method,route}
//
// Recomendación:
//   - recommend_requests_total{result}      result = ok | unknown_title
//   - recommend_duration_seconds
//
// Pósters:
//   - poster_fetch_attempts_total{outcome}  outcome = success | transient | terminal
//   - poster_fetch_fallbacks_total{reason}  reason = exhausted | terminal
//   - poster_breaker_state                  0=closed 1=half-open 2=open
//
// Catálogo:
//   - catalog_movies
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total de peticiones HTTP atendidas",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de las peticiones HTTP",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 10, 30, 60, 150},
		},
		[]string{"method", "route"},
	)

	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Recomendaciones solicitadas por resultado",
		},
		[]string{"result"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Tiempo total de una recomendación, incluidos los pósters",
			Buckets: []float64{.01, .05, .1, .5, 1, 2, 5, 10, 30, 60, 150},
		},
	)

	PosterFetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poster_fetch_attempts_total",
			Help: "Intentos contra TMDB por resultado",
		},
		[]string{"outcome"},
	)

	PosterFetchFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poster_fetch_fallbacks_total",
			Help: "Pósters sustituidos por el placeholder",
		},
		[]string{"reason"},
	)

	PosterBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poster_breaker_state",
			Help: "Estado del circuit breaker de TMDB (0=closed, 1=half-open, 2=open)",
		},
	)

	CatalogMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_movies",
			Help: "Películas cargadas en el catálogo",
		},
	)
)
