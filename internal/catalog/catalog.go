// Package catalog contiene los datos de solo lectura del recomendador:
// la tabla de películas y la matriz de similitud precalculada.
//
// Un Catalog se construye una vez al arranque y nunca se modifica, por lo que
// puede compartirse entre goroutines sin sincronización.
package catalog

import (
	"errors"
	"fmt"
	"math"

	"cinematch/internal/logging"
)

var (
	// ErrUnknownTitle indica que el título pedido no existe en el catálogo.
	ErrUnknownTitle = errors.New("título desconocido")

	// ErrMalformed agrupa los problemas de formato o dimensión de los artefactos.
	ErrMalformed = errors.New("artefacto mal formado")
)

// Movie es una fila de la tabla de películas. ID es el identificador de TMDB.
type Movie struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type Catalog struct {
	movies []Movie
	byName map[string]int
	n      int
	scores []float64 // n*n, fila i en scores[i*n:(i+1)*n]
}

// New valida las dimensiones y copia los datos a un Catalog inmutable.
//
// Si hay títulos repetidos, la búsqueda por título resuelve a la primera fila.
func New(movies []Movie, matrix [][]float64) (*Catalog, error) {
	n := len(movies)
	if n == 0 {
		return nil, fmt.Errorf("%w: tabla de películas vacía", ErrMalformed)
	}
	if len(matrix) != n {
		return nil, fmt.Errorf("%w: matriz de %d filas para %d películas", ErrMalformed, len(matrix), n)
	}

	c := &Catalog{
		movies: make([]Movie, n),
		byName: make(map[string]int, n),
		n:      n,
		scores: make([]float64, n*n),
	}
	copy(c.movies, movies)

	for i, row := range matrix {
		if len(row) != n {
			return nil, fmt.Errorf("%w: fila %d tiene %d columnas, se esperaban %d", ErrMalformed, i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: valor no finito en (%d, %d)", ErrMalformed, i, j)
			}
		}
		copy(c.scores[i*n:(i+1)*n], row)
	}

	dups := 0
	for i, m := range c.movies {
		if _, seen := c.byName[m.Title]; seen {
			dups++
			continue
		}
		c.byName[m.Title] = i
	}
	if dups > 0 {
		logging.Warn().Int("duplicates", dups).Msg("títulos repetidos en el catálogo; se usa la primera aparición")
	}

	return c, nil
}

// -----------------------------------------------------------
// Accesores de solo lectura
// -----------------------------------------------------------

func (c *Catalog) Len() int { return c.n }

func (c *Catalog) Movie(i int) Movie { return c.movies[i] }

// Titles devuelve los títulos en el orden de la tabla (copia).
func (c *Catalog) Titles() []string {
	out := make([]string, c.n)
	for i, m := range c.movies {
		out[i] = m.Title
	}
	return out
}

// IndexOf devuelve la fila del título o ErrUnknownTitle.
func (c *Catalog) IndexOf(title string) (int, error) {
	i, ok := c.byName[title]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownTitle, title)
	}
	return i, nil
}

// Row devuelve una copia de la fila i de la matriz de similitud.
func (c *Catalog) Row(i int) []float64 {
	out := make([]float64, c.n)
	copy(out, c.scores[i*c.n:(i+1)*c.n])
	return out
}

func (c *Catalog) Score(i, j int) float64 {
	return c.scores[i*c.n+j]
}
