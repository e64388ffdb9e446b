package catalog

import (
	"math"
	"sort"
	"sync"
)

// asymmetryTolerance es la diferencia máxima aceptada entre s(i,j) y s(j,i).
const asymmetryTolerance = 1e-9

// AuditReport resume la calidad de la matriz cargada.
type AuditReport struct {
	Movies   int
	MinScore float64
	MaxScore float64

	// SelfNotMax son filas donde alguna otra película supera a la propia.
	SelfNotMax []int
	// SelfTied son filas donde la propia película empata con el máximo.
	SelfTied []int

	AsymmetricPairs int
}

type rowAudit struct {
	row        int
	min, max   float64
	selfNotMax bool
	selfTied   bool
	asymmetric int
}

// Audit revisa cada fila en un pool de workers. Es una herramienta offline;
// el camino de una petición nunca la usa.
func Audit(c *Catalog, workers int) AuditReport {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, 1000)
	results := make(chan rowAudit, 1000)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- auditRow(c, i)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for i := 0; i < c.Len(); i++ {
			jobs <- i
		}
		close(jobs)
	}()

	rep := AuditReport{
		Movies:   c.Len(),
		MinScore: math.Inf(1),
		MaxScore: math.Inf(-1),
	}
	for r := range results {
		rep.MinScore = math.Min(rep.MinScore, r.min)
		rep.MaxScore = math.Max(rep.MaxScore, r.max)
		if r.selfNotMax {
			rep.SelfNotMax = append(rep.SelfNotMax, r.row)
		}
		if r.selfTied {
			rep.SelfTied = append(rep.SelfTied, r.row)
		}
		rep.AsymmetricPairs += r.asymmetric
	}
	sort.Ints(rep.SelfNotMax)
	sort.Ints(rep.SelfTied)
	return rep
}

func auditRow(c *Catalog, i int) rowAudit {
	n := c.Len()
	self := c.Score(i, i)
	r := rowAudit{row: i, min: self, max: self}

	for j := 0; j < n; j++ {
		v := c.Score(i, j)
		r.min = math.Min(r.min, v)
		r.max = math.Max(r.max, v)
		if j == i {
			continue
		}
		if v > self {
			r.selfNotMax = true
		} else if v == self {
			r.selfTied = true
		}
		// cada par se cuenta una vez, desde la fila menor
		if j > i && math.Abs(v-c.Score(j, i)) > asymmetryTolerance {
			r.asymmetric++
		}
	}
	if r.selfNotMax {
		r.selfTied = false
	}
	return r
}
