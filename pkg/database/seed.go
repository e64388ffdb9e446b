package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cinematch/internal/catalog"
	"cinematch/internal/logging"
)

// DefaultBatchSize es la cantidad de documentos por InsertMany.
const DefaultBatchSize = 500

// MovieDocuments convierte la tabla del catálogo a documentos.
func MovieDocuments(c *catalog.Catalog) []MovieDocument {
	docs := make([]MovieDocument, c.Len())
	for i := range docs {
		m := c.Movie(i)
		docs[i] = MovieDocument{Position: i, MovieID: m.ID, Title: m.Title}
	}
	return docs
}

// SimilarityDocuments convierte la matriz a un documento por fila.
func SimilarityDocuments(c *catalog.Catalog) []SimilarityDocument {
	docs := make([]SimilarityDocument, c.Len())
	for i := range docs {
		docs[i] = SimilarityDocument{Position: i, Scores: c.Row(i)}
	}
	return docs
}

// Seed reemplaza las colecciones movies y similarity con el catálogo dado.
func Seed(ctx context.Context, db *mongo.Database, c *catalog.Catalog, batchSize int) error {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	if err := replace(ctx, db.Collection(MoviesCollection), MovieDocuments(c), batchSize); err != nil {
		return fmt.Errorf("sembrando %s: %w", MoviesCollection, err)
	}
	if err := replace(ctx, db.Collection(SimilarityCollection), SimilarityDocuments(c), batchSize); err != nil {
		return fmt.Errorf("sembrando %s: %w", SimilarityCollection, err)
	}
	return nil
}

func replace[T any](ctx context.Context, col *mongo.Collection, docs []T, batchSize int) error {
	if err := col.Drop(ctx); err != nil {
		return err
	}

	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "position", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := make([]interface{}, 0, end-start)
		for _, d := range docs[start:end] {
			batch = append(batch, d)
		}
		if _, err := col.InsertMany(ctx, batch); err != nil {
			return err
		}
		logging.Debug().Str("collection", col.Name()).Int("inserted", end).Int("total", len(docs)).Msg("lote insertado")
	}
	return nil
}
