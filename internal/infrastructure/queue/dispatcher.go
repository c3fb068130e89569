package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/dreamscape/identity-system/internal/api/metrics"
	"github.com/dreamscape/identity-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes activity events to a fixed set of workers using
// consistent hashing on the username, guaranteeing per-user ordering of
// statistic updates.
type Dispatcher struct {
	workers []chan ports.ActivityInput
	service ports.ActivityService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ActivityService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.ActivityInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ActivityInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its username.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event ports.ActivityInput) {
	idx := d.shardIndex(event.Username)
	d.workers[idx] <- event
	metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// EnqueueBatch enqueues multiple events preserving per-user ordering.
func (d *Dispatcher) EnqueueBatch(events []ports.ActivityInput) {
	for _, e := range events {
		d.Enqueue(e)
	}
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ActivityInput) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			start := time.Now()
			err := d.service.Process(ctx, event)
			metrics.ActivityQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if err != nil {
				metrics.ActivityErrorsTotal.WithLabelValues("process_failed").Inc()
				d.log.Error().Err(err).
					Str("username", event.Username).
					Str("kind", event.Kind).
					Int("worker_id", id).
					Msg("activity processing failed")
				continue
			}
			metrics.ActivityEventsTotal.WithLabelValues(event.Kind).Inc()
			metrics.ActivityProcessingDuration.WithLabelValues(event.Kind).Observe(time.Since(start).Seconds())
		}
	}
}
