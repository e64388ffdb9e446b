package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"cinematch/internal/catalog"
	"cinematch/internal/logging"
	"cinematch/internal/recommender"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type indexPage struct {
	Titles          []string
	Selected        string
	Recommendations []recommender.Recommendation
	Error           string
}

// -----------------------------------------------------------
// GET /  (selector de película + tarjetas)
// -----------------------------------------------------------

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	page := indexPage{Titles: h.titles}
	status := http.StatusOK

	if movie := r.URL.Query().Get("movie"); movie != "" {
		page.Selected = movie
		recs, err := h.rec.Recommend(r.Context(), movie)
		switch {
		case err == nil:
			page.Recommendations = recs
		case errors.Is(err, catalog.ErrUnknownTitle):
			status = http.StatusNotFound
			page.Error = "Película no encontrada"
		default:
			logging.Error().Err(err).Str("title", movie).Msg("error generando recomendación")
			status = http.StatusInternalServerError
			page.Error = "Error en recomendación"
		}
	} else if len(h.titles) > 0 {
		page.Selected = h.titles[0]
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTmpl.Execute(w, page); err != nil {
		logging.Error().Err(err).Msg("error renderizando página")
	}
}

// -----------------------------------------------------------
// GET /api/movies
// -----------------------------------------------------------

type moviesResponse struct {
	Titles []string `json:"titles"`
}

func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, moviesResponse{Titles: h.titles})
}

// -----------------------------------------------------------
// GET /api/recommend?title=...
// -----------------------------------------------------------

type recommendResponse struct {
	Title           string                       `json:"title"`
	Recommendations []recommender.Recommendation `json:"recommendations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "debe especificar un título"})
		return
	}

	recs, err := h.rec.Recommend(r.Context(), title)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownTitle) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "película no encontrada"})
			return
		}
		logging.Error().Err(err).Str("title", title).Msg("error generando recomendación")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "error en recomendación"})
		return
	}

	writeJSON(w, http.StatusOK, recommendResponse{Title: title, Recommendations: recs})
}

// -----------------------------------------------------------
// GET /healthz
// -----------------------------------------------------------

type healthResponse struct {
	Status string `json:"status"`
	Movies int    `json:"movies"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Movies: len(h.titles)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("error escribiendo respuesta JSON")
	}
}
