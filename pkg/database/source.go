package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cinematch/internal/catalog"
)

// MongoSource lee el catálogo desde las colecciones movies y similarity.
// Ambas se ordenan por position, que es el índice de fila.
type MongoSource struct {
	DB *mongo.Database
}

func (s MongoSource) Name() string { return "mongo" }

func (s MongoSource) Load(ctx context.Context) ([]catalog.Movie, [][]float64, error) {
	byPosition := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	cur, err := s.DB.Collection(MoviesCollection).Find(ctx, bson.D{}, byPosition)
	if err != nil {
		return nil, nil, fmt.Errorf("leyendo %s: %w", MoviesCollection, err)
	}
	var movieDocs []MovieDocument
	if err := cur.All(ctx, &movieDocs); err != nil {
		return nil, nil, fmt.Errorf("leyendo %s: %w", MoviesCollection, err)
	}

	cur, err = s.DB.Collection(SimilarityCollection).Find(ctx, bson.D{}, byPosition)
	if err != nil {
		return nil, nil, fmt.Errorf("leyendo %s: %w", SimilarityCollection, err)
	}
	var rowDocs []SimilarityDocument
	if err := cur.All(ctx, &rowDocs); err != nil {
		return nil, nil, fmt.Errorf("leyendo %s: %w", SimilarityCollection, err)
	}

	movies := make([]catalog.Movie, len(movieDocs))
	for i, d := range movieDocs {
		if d.Position != i {
			return nil, nil, fmt.Errorf("%w: %s sin position %d", catalog.ErrMalformed, MoviesCollection, i)
		}
		movies[i] = catalog.Movie{ID: d.MovieID, Title: d.Title}
	}

	matrix := make([][]float64, len(rowDocs))
	for i, d := range rowDocs {
		if d.Position != i {
			return nil, nil, fmt.Errorf("%w: %s sin position %d", catalog.ErrMalformed, SimilarityCollection, i)
		}
		matrix[i] = d.Scores
	}
	return movies, matrix, nil
}
