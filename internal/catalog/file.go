package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FileSource lee los artefactos desde disco. El formato se elige por
// extensión: .csv o .json.
//
//	movies.csv:      cabecera con columnas id (o movie_id) y title; el resto se ignora
//	movies.json:     [{"id": 19995, "title": "Avatar"}, ...]
//	similarity.csv:  una fila por línea, sin cabecera
//	similarity.json: [[1, 0.2, ...], ...]
type FileSource struct {
	MoviesPath     string
	SimilarityPath string
}

func (s FileSource) Name() string { return "file" }

func (s FileSource) Load(ctx context.Context) ([]Movie, [][]float64, error) {
	movies, err := LoadMovies(s.MoviesPath)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	matrix, err := LoadSimilarity(s.SimilarityPath)
	if err != nil {
		return nil, nil, err
	}
	return movies, matrix, nil
}

// -----------------------------------------------------------
// Tabla de películas
// -----------------------------------------------------------

func LoadMovies(path string) ([]Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext(path) {
	case ".csv":
		movies, err := readMoviesCSV(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return movies, nil
	case ".json":
		movies, err := readMoviesJSON(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return movies, nil
	default:
		return nil, fmt.Errorf("%w: formato no soportado %q", ErrMalformed, path)
	}
}

// jsonMovie distingue un id ausente de un id cero.
type jsonMovie struct {
	ID    *int   `json:"id"`
	Title string `json:"title"`
}

func readMoviesJSON(r io.Reader) ([]Movie, error) {
	var rows []jsonMovie
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	movies := make([]Movie, 0, len(rows))
	for i, m := range rows {
		if m.ID == nil {
			return nil, fmt.Errorf("%w: película %d sin id", ErrMalformed, i)
		}
		if strings.TrimSpace(m.Title) == "" {
			return nil, fmt.Errorf("%w: película %d sin título", ErrMalformed, i)
		}
		movies = append(movies, Movie{ID: *m.ID, Title: m.Title})
	}
	return movies, nil
}

func readMoviesCSV(r io.Reader) ([]Movie, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: archivo vacío", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	idCol, titleCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "id", "movie_id":
			if idCol < 0 {
				idCol = i
			}
		case "title":
			titleCol = i
		}
	}
	if idCol < 0 || titleCol < 0 {
		return nil, fmt.Errorf("%w: faltan columnas id/title en la cabecera %v", ErrMalformed, header)
	}

	var movies []Movie
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if len(rec) <= idCol || len(rec) <= titleCol {
			return nil, fmt.Errorf("%w: línea %d incompleta", ErrMalformed, line)
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[idCol]))
		if err != nil {
			return nil, fmt.Errorf("%w: línea %d: id %q no numérico", ErrMalformed, line, rec[idCol])
		}
		if strings.TrimSpace(rec[titleCol]) == "" {
			return nil, fmt.Errorf("%w: línea %d sin título", ErrMalformed, line)
		}
		movies = append(movies, Movie{ID: id, Title: rec[titleCol]})
	}
	return movies, nil
}

// -----------------------------------------------------------
// Matriz de similitud
// -----------------------------------------------------------

func LoadSimilarity(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext(path) {
	case ".csv":
		m, err := readMatrixCSV(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return m, nil
	case ".json":
		var m [][]float64
		if err := json.NewDecoder(f).Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: formato no soportado %q", ErrMalformed, path)
	}
}

func readMatrixCSV(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var matrix [][]float64
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		row := make([]float64, len(rec))
		for j, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: línea %d columna %d: %q no numérico", ErrMalformed, line, j+1, cell)
			}
			row[j] = v
		}
		matrix = append(matrix, row)
	}
	return matrix, nil
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
