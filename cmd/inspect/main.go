// Comando inspect: audita la matriz de similitud cargada con la misma
// configuración que la API y reporta filas sospechosas.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cinematch/internal/bootstrap"
	"cinematch/internal/catalog"
	"cinematch/internal/config"
	"cinematch/internal/logging"
)

const workerCount = 8

func main() {
	workers := flag.Int("workers", workerCount, "goroutines para recorrer la matriz")
	show := flag.Int("show", 10, "máximo de filas sospechosas a listar")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("no se pudo cargar la configuración")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	cat, err := bootstrap.LoadCatalog(context.Background(), cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("no se pudo cargar el catálogo")
	}

	rep := catalog.Audit(cat, *workers)
	printReport(cat, rep, *show)

	if len(rep.SelfNotMax) > 0 {
		os.Exit(1)
	}
}

// ---------------------- REPORTE ----------------------

func printReport(cat *catalog.Catalog, rep catalog.AuditReport, show int) {
	fmt.Printf("Películas:            %d\n", rep.Movies)
	fmt.Printf("Rango de similitud:   [%.4f, %.4f]\n", rep.MinScore, rep.MaxScore)
	fmt.Printf("Pares asimétricos:    %d\n", rep.AsymmetricPairs)
	fmt.Printf("Propia no es máximo:  %d\n", len(rep.SelfNotMax))
	fmt.Printf("Propia empata máximo: %d\n", len(rep.SelfTied))

	list := func(label string, rows []int) {
		if len(rows) == 0 {
			return
		}
		fmt.Println(label)
		for i, r := range rows {
			if i == show {
				fmt.Printf("  ... y %d más\n", len(rows)-show)
				break
			}
			m := cat.Movie(r)
			fmt.Printf("  [%d] %s (id %d)\n", r, m.Title, m.ID)
		}
	}
	list("Filas donde otra película supera a la propia:", rep.SelfNotMax)
	list("Filas con empate en el máximo:", rep.SelfTied)
}
