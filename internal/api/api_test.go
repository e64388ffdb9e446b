package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"

	"cinematch/internal/catalog"
	"cinematch/internal/config"
	"cinematch/internal/recommender"
)

type fakeRecommender struct {
	err   error
	calls []string
}

func (f *fakeRecommender) Recommend(_ context.Context, title string) ([]recommender.Recommendation, error) {
	f.calls = append(f.calls, title)
	if f.err != nil {
		return nil, f.err
	}
	if title == "Missing" {
		return nil, fmt.Errorf("%w: %q", catalog.ErrUnknownTitle, title)
	}
	recs := make([]recommender.Recommendation, 5)
	for i := range recs {
		recs[i] = recommender.Recommendation{
			MovieID:   i + 1,
			Title:     fmt.Sprintf("Similar %d", i+1),
			PosterURL: fmt.Sprintf("https://image.tmdb.org/t/p/w500/p%d.jpg", i+1),
			Score:     1 - float64(i)/10,
		}
	}
	return recs, nil
}

var testTitles = []string{"Avatar", "Spectre", "The Dark Knight Rises"}

func newTestServer(t *testing.T, rec Recommender, mutate func(*config.ServerConfig)) *httptest.Server {
	t.Helper()
	cfg := config.Default().Server
	cfg.RateLimitDisabled = true
	if mutate != nil {
		mutate(&cfg)
	}
	srv := httptest.NewServer(NewRouter(cfg, NewHandler(rec, testTitles)))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, rawURL string) *http.Response {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestIndex_SelectionControl(t *testing.T) {
	rec := &fakeRecommender{}
	srv := newTestServer(t, rec, nil)

	resp := get(t, srv.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	opts := doc.Find("select[name=movie] option")
	if opts.Length() != len(testTitles) {
		t.Fatalf("opciones = %d, want %d", opts.Length(), len(testTitles))
	}
	if sel := doc.Find("option[selected]"); sel.Length() != 1 || sel.Text() != "Avatar" {
		t.Fatalf("la primera película debe venir seleccionada, got %q", sel.Text())
	}
	if doc.Find(".movie-card").Length() != 0 {
		t.Fatalf("no debe haber tarjetas sin consulta")
	}
	if len(rec.calls) != 0 {
		t.Fatalf("no debe recomendar sin acción del usuario")
	}
}

func TestIndex_ShowsFiveCards(t *testing.T) {
	rec := &fakeRecommender{}
	srv := newTestServer(t, rec, nil)

	resp := get(t, srv.URL+"/?movie="+url.QueryEscape("Spectre"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	cards := doc.Find(".movie-card")
	if cards.Length() != 5 {
		t.Fatalf("tarjetas = %d, want 5", cards.Length())
	}
	cards.Each(func(i int, s *goquery.Selection) {
		src, _ := s.Find("img").Attr("src")
		if want := fmt.Sprintf("https://image.tmdb.org/t/p/w500/p%d.jpg", i+1); src != want {
			t.Errorf("tarjeta %d: src = %q, want %q", i, src, want)
		}
		if got := strings.TrimSpace(s.Find(".movie-title").Text()); got != fmt.Sprintf("Similar %d", i+1) {
			t.Errorf("tarjeta %d: título = %q", i, got)
		}
	})
	if got := doc.Find("#similar-to").Text(); !strings.Contains(got, "Spectre") {
		t.Fatalf("encabezado = %q", got)
	}
	if sel := doc.Find("option[selected]"); sel.Text() != "Spectre" {
		t.Fatalf("seleccionada = %q", sel.Text())
	}
	if len(rec.calls) != 1 || rec.calls[0] != "Spectre" {
		t.Fatalf("calls = %v", rec.calls)
	}
}

func TestIndex_UnknownTitle(t *testing.T) {
	srv := newTestServer(t, &fakeRecommender{}, nil)

	resp := get(t, srv.URL+"/?movie=Missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Find(".error").Length() != 1 || doc.Find(".movie-card").Length() != 0 {
		t.Fatalf("se esperaba un mensaje de error y ninguna tarjeta")
	}
}

func TestMovies(t *testing.T) {
	srv := newTestServer(t, &fakeRecommender{}, nil)

	resp := get(t, srv.URL+"/api/movies")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body moviesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Titles) != 3 || body.Titles[2] != "The Dark Knight Rises" {
		t.Fatalf("titles = %v", body.Titles)
	}
}

func TestRecommend_JSON(t *testing.T) {
	srv := newTestServer(t, &fakeRecommender{}, nil)

	resp := get(t, srv.URL+"/api/recommend?title="+url.QueryEscape("The Dark Knight Rises"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q", ct)
	}
	var body recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Title != "The Dark Knight Rises" || len(body.Recommendations) != 5 {
		t.Fatalf("body = %+v", body)
	}
	if body.Recommendations[0].PosterURL == "" || body.Recommendations[0].MovieID != 1 {
		t.Fatalf("primera recomendación = %+v", body.Recommendations[0])
	}
}

func TestRecommend_Errors(t *testing.T) {
	cases := []struct {
		name   string
		rec    *fakeRecommender
		query  string
		status int
	}{
		{"sin título", &fakeRecommender{}, "", http.StatusBadRequest},
		{"título en blanco", &fakeRecommender{}, "?title=%20", http.StatusBadRequest},
		{"título desconocido", &fakeRecommender{}, "?title=Missing", http.StatusNotFound},
		{"error interno", &fakeRecommender{err: errors.New("boom")}, "?title=Avatar", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, tc.rec, nil)
			resp := get(t, srv.URL+"/api/recommend"+tc.query)
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			var body errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Error == "" {
				t.Fatalf("falta el mensaje de error")
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, &fakeRecommender{}, nil)
	get(t, srv.URL+"/api/movies")

	resp := get(t, srv.URL+"/healthz")
	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.Movies != 3 {
		t.Fatalf("health = %+v", health)
	}

	resp = get(t, srv.URL+"/metrics")
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), `http_requests_total{method="GET",route="/api/movies",status="200"}`) {
		t.Fatalf("faltan métricas HTTP:\n%s", b)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, &fakeRecommender{}, func(c *config.ServerConfig) {
		c.RateLimitDisabled = false
		c.RateLimitRequests = 2
		c.RateLimitWindow = time.Minute
	})

	for i := 0; i < 2; i++ {
		if resp := get(t, srv.URL+"/api/movies"); resp.StatusCode != http.StatusOK {
			t.Fatalf("petición %d: status = %d", i, resp.StatusCode)
		}
	}
	if resp := get(t, srv.URL+"/api/movies"); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	// health queda fuera del límite
	if resp := get(t, srv.URL+"/healthz"); resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, &fakeRecommender{}, func(c *config.ServerConfig) {
		c.CORSOrigins = []string{"https://cine.example.com"}
	})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/movies", nil)
	req.Header.Set("Origin", "https://cine.example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://cine.example.com" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}

	// sin orígenes configurados no se agrega la cabecera
	plain := newTestServer(t, &fakeRecommender{}, nil)
	req, _ = http.NewRequest(http.MethodGet, plain.URL+"/api/movies", nil)
	req.Header.Set("Origin", "https://cine.example.com")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if got := resp2.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want vacío", got)
	}
}
