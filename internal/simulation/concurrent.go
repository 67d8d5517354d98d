package simulation

// concurrent.go — worker pool para los runs del experimento.
//
// Los runs son embarazosamente paralelos: cero estado compartido, cada
// worker construye sus propios arms, policy y RNG. El merge es una escritura
// por índice de run + reduce posterior, sin locks.

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/alejandrodnm/adsim/internal/domain"
)

// runAll ejecuta los Runs del experimento en un worker pool y devuelve los
// resultados ordenados por índice de run. Cada run deriva su RNG de
// (seed base, índice de run), así que el output es idéntico con 1 o con N
// workers, independiente del scheduling.
//
// Si Workers <= 0 usa runtime.NumCPU().
func (a *Aggregator) runAll(ctx context.Context) ([]domain.RunResult, error) {
	p := a.params

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > p.Runs {
		workers = p.Runs
	}

	workCh := make(chan int, p.Runs)
	doneCh := make(chan int, p.Runs)
	errCh := make(chan error, workers)

	results := make([]domain.RunResult, p.Runs)

	// Worker pool: cada worker toma índices de workCh y escribe el
	// resultado en su posición del slice (índices disjuntos, sin locks).
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				select {
				case <-ctx.Done():
					return
				default:
				}

				res, err := a.runOne(i)
				if err != nil {
					errCh <- err
					return
				}
				results[i] = res
				doneCh <- i
			}
		}()
	}

	for i := 0; i < p.Runs; i++ {
		workCh <- i
	}
	close(workCh)

	// Cerrar los channels de salida cuando todos los workers terminen.
	go func() {
		wg.Wait()
		close(doneCh)
		close(errCh)
	}()

	// El collector es el único goroutine que invoca el progress callback.
	completed := 0
	for range doneCh {
		completed++
		if a.onProgress != nil {
			a.onProgress(completed, p.Runs)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("simulation.Aggregator: cancelled after %d/%d runs: %w",
			completed, p.Runs, err)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}

	slog.Debug("experiment runs complete",
		"runs", p.Runs,
		"workers", workers,
	)

	return results, nil
}

// runOne construye arms frescos y ejecuta un run con su RNG derivado.
func (a *Aggregator) runOne(idx int) (domain.RunResult, error) {
	p := a.params

	arms, err := domain.NewArms(p.Arms)
	if err != nil {
		return domain.RunResult{}, err
	}

	rng := rand.New(rand.NewPCG(p.Seed, uint64(idx)))

	res, err := Run(rng, arms, p.Impressions)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("simulation.Aggregator: run %d: %w", idx, err)
	}
	return res, nil
}
