package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Delivery outcomes reported to the Recorder
const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultPanic   = "panic"
	ResultDropped = "dropped"
)

// Recorder observes delivery outcomes
type Recorder interface {
	NotificationResult(kind, result string)
}

// Task is one unit of notification work
type Task func(ctx context.Context) error

type job struct {
	kind string
	run  Task
}

// Dispatcher runs notification tasks on a fixed pool of workers.
// Submit never blocks: when the queue is full the task is dropped.
type Dispatcher struct {
	log      zerolog.Logger
	recorder Recorder
	timeout  time.Duration
	queue    chan job
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

// NewDispatcher starts workers goroutines draining a queue of queueSize tasks.
// Each task gets its own context bounded by timeout.
func NewDispatcher(workers, queueSize int, timeout time.Duration, recorder Recorder, log zerolog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < workers {
		queueSize = workers
	}

	d := &Dispatcher{
		log:      log.With().Str("component", "notify").Logger(),
		recorder: recorder,
		timeout:  timeout,
		queue:    make(chan job, queueSize),
	}

	d.log.Info().Int("workers", workers).Int("queue_size", queueSize).Msg("Starting notification workers")

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Submit enqueues task. It reports false when the task was dropped.
func (d *Dispatcher) Submit(kind string, task Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn().Str("kind", kind).Msg("Notification dropped: dispatcher is shut down")
		d.record(kind, ResultDropped)
		return false
	}

	select {
	case d.queue <- job{kind: kind, run: task}:
		return true
	default:
		d.log.Warn().Str("kind", kind).Msg("Notification dropped: queue is full")
		d.record(kind, ResultDropped)
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish or ctx to expire
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info().Msg("Notification workers stopped")
		return nil
	case <-ctx.Done():
		d.log.Warn().Msg("Notification workers did not finish before shutdown deadline")
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.queue {
		d.run(j)
	}
}

// run executes one task. A panic is logged and recorded, never propagated.
func (d *Dispatcher) run(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Str("kind", j.kind).
				Msg("Notification task panicked - recovered")
			d.record(j.kind, ResultPanic)
		}
	}()

	if err := j.run(ctx); err != nil {
		d.log.Error().Err(err).Str("kind", j.kind).Msg("Notification failed")
		d.record(j.kind, ResultFailed)
		return
	}
	d.record(j.kind, ResultSent)
}

func (d *Dispatcher) record(kind, result string) {
	if d.recorder != nil {
		d.recorder.NotificationResult(kind, result)
	}
}
