// Package dispatch runs one job per identifier across a bounded number of
// goroutines and reports how each job went.
package dispatch

import (
	"context"
	"log"
	"time"
)

// DefaultWorkers is NCBI's recommended limit of simultaneous requests.
const DefaultWorkers = 10

// Options sizes the pool.
type Options struct {
	// Workers is the requested number of concurrent jobs.
	Workers int

	// UseBatchSize runs every job at once, ignoring Workers.
	UseBatchSize bool
}

// Effective resolves the options into the worker count for a batch of n
// jobs. It is never more than n (unless n is 0) and never less than 1.
func (o Options) Effective(n int) int {
	workers := o.Workers
	if o.UseBatchSize || workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Func downloads one identifier.
type Func func(ctx context.Context, id string) error

// Outcome records how one job went.
type Outcome struct {
	Index    int
	ID       string
	Err      error
	Started  time.Time
	Finished time.Time
}

// OK reports whether the job succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Duration is how long the job ran. Jobs that never started report zero.
func (o Outcome) Duration() time.Duration {
	if o.Started.IsZero() {
		return 0
	}
	return o.Finished.Sub(o.Started)
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Run calls fn once for each id with at most opts.Effective(len(ids)) calls in
// flight, and returns when every call has returned. Outcomes are in the same
// order as ids. A failing job does not affect the others. Once ctx is done,
// jobs that have not yet started are recorded with ctx.Err() instead of being
// run.
func Run(ctx context.Context, ids []string, opts Options, fn Func) []Outcome {
	outcomes := make([]Outcome, len(ids))
	if len(ids) == 0 {
		return outcomes
	}

	concurrency := opts.Effective(len(ids))
	log.Println("Using up to", concurrency, "simultaneous downloads for", len(ids), "samples")

	sem := make(chan struct{}, concurrency)

	for i, id := range ids {
		outcomes[i] = Outcome{Index: i, ID: id}

		select {
		case sem <- struct{}{}:
			if err := ctx.Err(); err != nil {
				<-sem
				outcomes[i].Err = err
				continue
			}
		case <-ctx.Done():
			outcomes[i].Err = ctx.Err()
			continue
		}

		// Each goroutine writes only its own slot.
		go func(i int, id string) {
			defer func() { <-sem }()

			log.Println(i+1, len(ids), "Downloading", id)

			outcomes[i].Started = time.Now()
			err := fn(ctx, id)
			outcomes[i].Finished = time.Now()
			outcomes[i].Err = err

			if err != nil {
				log.Println(i+1, len(ids), "Failed", id+":", err)
			}
		}(i, id)
	}

	// Wait for the in-flight jobs by filling every slot.
	for i := 0; i < cap(sem); i++ {
		sem <- struct{}{}
	}

	return outcomes
}
