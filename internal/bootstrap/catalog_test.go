package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cinematch/internal/config"
)

func TestLoadCatalog_File(t *testing.T) {
	dir := t.TempDir()
	mp := filepath.Join(dir, "movies.csv")
	sp := filepath.Join(dir, "similarity.csv")
	if err := os.WriteFile(mp, []byte("id,title\n1,A\n2,B\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sp, []byte("1,0.4\n0.4,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Data.MoviesPath = mp
	cfg.Data.SimilarityPath = sp

	c, err := LoadCatalog(context.Background(), cfg)
	if err != nil {
		t.Fatalf("no se esperaba error: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d", c.Len())
	}
}

func TestLoadCatalog_UnknownSource(t *testing.T) {
	cfg := config.Default()
	cfg.Data.Source = "s3"
	if _, err := LoadCatalog(context.Background(), cfg); err == nil {
		t.Fatalf("se esperaba error")
	}
}
