package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yamdb/reviewhub/internal/infrastructure/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Task is one unit of work. Tasks with the same Key run on the same worker,
// in submission order.
type Task struct {
	Key string
	Run func(ctx context.Context) error
}

// Dispatcher routes tasks to a fixed set of workers using consistent hashing
// on the task key.
type Dispatcher struct {
	numWorkers int
	log        zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Dispatcher{numWorkers: numWorkers, log: log}
}

// Run feeds tasks to the workers and waits for all of them. The first failing
// task cancels the rest and its error is returned. Tasks already queued when
// that happens are drained without running.
func (d *Dispatcher) Run(ctx context.Context, tasks []Task) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var g errgroup.Group
	workers := make([]chan Task, d.numWorkers)
	for i := range workers {
		workers[i] = make(chan Task, channelBuffer)
		ch := workers[i]
		g.Go(func() error { return d.runWorker(ctx, cancel, i, ch) })
	}

	g.Go(func() error {
		defer func() {
			for _, ch := range workers {
				close(ch)
			}
		}()
		for _, t := range tasks {
			idx := d.shardIndex(t.Key)
			select {
			case workers[idx] <- t:
				metrics.LoaderQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
			case <-ctx.Done():
				// the workers report the cause
				return nil
			}
		}
		return nil
	})

	return g.Wait()
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(d.numWorkers))
}

// runWorker drains ch until it is closed, even after a failure, so the depth
// gauge always returns to zero.
func (d *Dispatcher) runWorker(ctx context.Context, cancel context.CancelCauseFunc, id int, ch <-chan Task) error {
	depth := metrics.LoaderQueueDepth.WithLabelValues(strconv.Itoa(id))
	for t := range ch {
		depth.Dec()
		if ctx.Err() != nil {
			continue
		}
		if err := t.Run(ctx); err != nil {
			d.log.Error().Err(err).
				Str("key", t.Key).
				Int("worker_id", id).
				Msg("task failed")
			cancel(fmt.Errorf("task %s: %w", t.Key, err))
		}
	}
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return nil
}
