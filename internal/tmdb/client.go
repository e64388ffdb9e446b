// Package tmdb resuelve la URL del póster de una película contra la API de TMDB.
//
// FetchPoster nunca devuelve error: cualquier fallo termina en el placeholder
// configurado. Por intento el estado es
//
//	Attempting(n) -> Success
//	              -> Attempting(n+1)  fallo transitorio, hasta MaxAttempts
//	              -> Fallback         cualquier otro fallo
package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"cinematch/internal/config"
	"cinematch/internal/logging"
	"cinematch/internal/metrics"
)

// maxBody acota lo que se lee de una respuesta de /movie/{id}.
const maxBody = 1 << 20

// movieResponse es el subconjunto de GET /movie/{id} que usamos.
type movieResponse struct {
	ID         int    `json:"id"`
	PosterPath string `json:"poster_path"`
}

type page struct {
	status int
	body   []byte
}

type Client struct {
	apiKey      string
	baseURL     string
	imageBase   string
	placeholder string
	language    string
	maxAttempts int

	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*page]
	log     zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient reemplaza el cliente HTTP (tests, proxies).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(cfg config.TMDBConfig, opts ...Option) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	c := &Client{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		imageBase:   cfg.ImageBaseURL,
		placeholder: cfg.PlaceholderURL,
		language:    cfg.Language,
		maxAttempts: maxAttempts,
		http:        &http.Client{Timeout: cfg.Timeout},
		limiter:     newLimiter(cfg.RequestsPerSecond),
		log:         logging.With("tmdb"),
	}
	if cfg.BreakerEnabled {
		c.breaker = newBreaker()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// newBreaker abre el circuito tras 5 fallos transitorios seguidos; los
// fallos terminales (404, cuerpo inválido) no cuentan.
func newBreaker() *gobreaker.CircuitBreaker[*page] {
	metrics.PosterBreakerState.Set(float64(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[*page](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return classify(err) != failureTransient
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.PosterBreakerState.Set(float64(to))
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker cambió de estado")
		},
	})
}

// Placeholder es la URL que se devuelve cuando no hay póster.
func (c *Client) Placeholder() string { return c.placeholder }

// FetchPoster devuelve la URL del póster de movieID o el placeholder.
// Los intentos son secuenciales; solo se reintentan timeouts y fallos de conexión.
func (c *Client) FetchPoster(ctx context.Context, movieID int) string {
	log := c.log.With().Int("movie_id", movieID).Logger()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		poster, kind, err := c.attempt(ctx, movieID)
		metrics.PosterFetchAttempts.WithLabelValues(kind.String()).Inc()

		switch kind {
		case failureNone:
			return poster
		case failureTransient:
			log.Debug().Err(err).Int("attempt", attempt).Msg("fallo transitorio consultando TMDB")
			if ctx.Err() != nil {
				return c.fallback(log, "terminal", ctx.Err())
			}
		default:
			return c.fallback(log, "terminal", err)
		}
	}
	return c.fallback(log, "exhausted", nil)
}

func (c *Client) fallback(log zerolog.Logger, reason string, err error) string {
	metrics.PosterFetchFallbacks.WithLabelValues(reason).Inc()
	log.Warn().Err(err).Str("reason", reason).Msg("se usa el póster placeholder")
	return c.placeholder
}

// attempt hace una sola consulta y clasifica el resultado.
func (c *Client) attempt(ctx context.Context, movieID int) (string, failure, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", failureTerminal, err
	}

	var (
		p   *page
		err error
	)
	if c.breaker != nil {
		p, err = c.breaker.Execute(func() (*page, error) { return c.get(ctx, movieID) })
	} else {
		p, err = c.get(ctx, movieID)
	}
	if err != nil {
		return "", classify(err), err
	}

	if p.status != http.StatusOK {
		return "", failureTerminal, &StatusError{StatusCode: p.status}
	}

	var m movieResponse
	if err := json.Unmarshal(p.body, &m); err != nil {
		return "", failureTerminal, fmt.Errorf("decodificando respuesta de TMDB: %w", err)
	}
	if m.PosterPath == "" {
		return "", failureTerminal, ErrNoPoster
	}
	return c.imageBase + m.PosterPath, failureNone, nil
}

func (c *Client) get(ctx context.Context, movieID int) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.movieURL(movieID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &page{status: resp.StatusCode}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	return &page{status: resp.StatusCode, body: body}, nil
}

func (c *Client) movieURL(movieID int) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}
	return c.baseURL + "/movie/" + strconv.Itoa(movieID) + "?" + q.Encode()
}
