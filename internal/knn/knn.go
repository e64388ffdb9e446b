package knn

import (
	"sort"
)

// ---------------------------------------------------------
// Vecinos más cercanos sobre una fila de la matriz de similitud
// ---------------------------------------------------------

// Neighbor es una película candidata con su puntaje respecto a la consulta.
type Neighbor struct {
	Index      int
	Similarity float64
}

// TopK ordena la fila por similitud descendente y devuelve los k primeros,
// excluyendo explícitamente la fila de la consulta.
//
// El orden es estable: ante empate gana el índice menor (orden de la tabla).
// Si la fila tiene menos de k candidatos se devuelven todos.
func TopK(row []float64, query int, k int) []Neighbor {
	return TopKFunc(row, k, func(i int) bool { return i == query })
}

// TopKFunc es TopK con un criterio de exclusión arbitrario: las filas para
// las que skip devuelve true nunca aparecen en el resultado.
func TopKFunc(row []float64, k int, skip func(i int) bool) []Neighbor {
	if k <= 0 {
		return nil
	}

	list := make([]Neighbor, 0, len(row))
	for i, s := range row {
		if skip(i) {
			continue
		}
		list = append(list, Neighbor{Index: i, Similarity: s})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Similarity > list[j].Similarity
	})

	if len(list) > k {
		return list[:k]
	}
	return list
}

// SelfIsMax informa si la consulta tiene el puntaje estrictamente máximo de su fila.
// Con los datos esperados siempre es true; el recomendador lo usa solo para avisar.
func SelfIsMax(row []float64, query int) bool {
	self := row[query]
	for i, s := range row {
		if i != query && s >= self {
			return false
		}
	}
	return true
}
