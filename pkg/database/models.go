package database

// -----------------------------------------------------------
// DOCUMENTO: Película del catálogo
// Colección: movies
// -----------------------------------------------------------

type MovieDocument struct {
	Position int    `bson:"position" json:"position"`
	MovieID  int    `bson:"movie_id" json:"movie_id"`
	Title    string `bson:"title" json:"title"`
}

// -----------------------------------------------------------
// DOCUMENTO: Fila de la matriz de similitud
// Colección: similarity
// -----------------------------------------------------------

type SimilarityDocument struct {
	Position int       `bson:"position" json:"position"`
	Scores   []float64 `bson:"scores" json:"scores"`
}
