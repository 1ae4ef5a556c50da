package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for dispatched work.
var (
	dispatchTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vgp_dispatch_tasks_total",
		Help: "Total dispatched tasks by outcome",
	}, []string{"outcome"})

	dispatchTaskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vgp_dispatch_task_duration_seconds",
		Help:    "Dispatched task duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	dispatchBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vgp_dispatch_batch_size",
		Help:    "Number of inputs per dispatch batch",
		Buckets: []float64{1, 5, 10, 50, 100, 500},
	})
)

// DefaultMaxWorkers is the worker pool size used when Config.MaxWorkers
// is not set.
const DefaultMaxWorkers = 4

// Config holds dispatcher configuration.
type Config struct {
	// MaxWorkers is the maximum number of concurrent task executions.
	// A value of 1 yields strictly sequential execution in input order.
	MaxWorkers int
}

// DefaultConfig returns a safe default dispatcher configuration.
func DefaultConfig() Config {
	return Config{MaxWorkers: DefaultMaxWorkers}
}

// Func is a strongly-typed unit of work applied to a single input.
type Func[T, R any] func(ctx context.Context, input T) (R, error)

// Result pairs one input index with the outcome of applying the
// operation to that input. A task's identity is its input index, so
// inputs need not be unique.
type Result[R any] struct {
	// Index is the position of the input in the original slice.
	Index int

	// Value is the operation result. Only meaningful when Err is nil.
	Value R

	// Err is the failure captured for this input, if any.
	Err error
}

// Map applies op to every input using a bounded pool of worker
// goroutines and returns one Result per input, in input order.
//
// Failure policy is collect-all: a failing task records its error at
// its index and never aborts sibling or queued work. Map blocks until
// all scheduled work has completed; it never returns partial results
// early. Context cancellation does not interrupt in-flight operations,
// but tasks not yet started fail fast with ctx.Err().
func Map[T, R any](ctx context.Context, inputs []T, op Func[T, R], cfg Config) []Result[R] {
	start := time.Now()

	results := make([]Result[R], len(inputs))
	if len(inputs) == 0 {
		return results
	}

	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = DefaultMaxWorkers
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	dispatchBatchSize.Observe(float64(len(inputs)))

	// Seed the full queue before starting workers so tasks are pulled
	// in input order.
	queue := make(chan int, len(inputs))
	for i := range inputs {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			worker(ctx, workerID, inputs, op, queue, results)
		}(w)
	}
	wg.Wait()

	failed := 0
	for i := range results {
		if results[i].Err != nil {
			failed++
		}
	}

	log.Debug().
		Int("inputs", len(inputs)).
		Int("workers", workers).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Dispatch batch complete")

	return results
}

// worker drains the queue, writing each outcome to its own slot in
// results. Slots are disjoint per index, so no locking is needed.
func worker[T, R any](ctx context.Context, workerID int, inputs []T, op Func[T, R], queue <-chan int, results []Result[R]) {
	for i := range queue {
		if err := ctx.Err(); err != nil {
			results[i] = Result[R]{Index: i, Err: err}
			dispatchTasksTotal.WithLabelValues("cancelled").Inc()
			continue
		}

		taskStart := time.Now()
		value, err := op(ctx, inputs[i])
		dispatchTaskDuration.Observe(time.Since(taskStart).Seconds())

		results[i] = Result[R]{Index: i, Value: value, Err: err}
		if err != nil {
			dispatchTasksTotal.WithLabelValues("error").Inc()
			log.Warn().
				Err(err).
				Int("worker_id", workerID).
				Int("index", i).
				Msg("Dispatched task failed")
			continue
		}
		dispatchTasksTotal.WithLabelValues("ok").Inc()
	}
}

// Values unpacks results into a value slice. It returns the first
// captured error, wrapped with its index, or nil if every task
// succeeded. The value slice is complete either way; failed indexes
// hold the zero value.
func Values[R any](results []Result[R]) ([]R, error) {
	values := make([]R, len(results))
	var first error
	for i, r := range results {
		values[i] = r.Value
		if r.Err != nil && first == nil {
			first = &TaskError{Index: r.Index, Err: r.Err}
		}
	}
	return values, first
}
