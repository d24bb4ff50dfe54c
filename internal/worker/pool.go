package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueMaterialize = "jobs:materialize"
	QueueEmail       = "jobs:email"

	JobTypeMaterialize = "materialize"
	JobTypeEmail       = "email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts,omitempty"`
}

// Handler processes one decoded job payload. A returned error makes the pool
// retry the job until it reaches the attempt limit.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// permanentError marks failures that retrying cannot fix (bad payloads).
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the pool sends the job straight to the DLQ.
func Permanent(err error) error { return permanentError{err: err} }

func isPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueMaterialize pushes a plan-month materialization job.
func (d *Dispatcher) EnqueueMaterialize(ctx context.Context, payload MaterializeJobPayload) error {
	return d.enqueue(ctx, QueueMaterialize, JobTypeMaterialize, payload)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobTypeEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return d.push(ctx, queue, Job{Type: jobType, Payload: data})
}

func (d *Dispatcher) push(ctx context.Context, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// WorkerHandlers routes each job type to its processor.
type WorkerHandlers struct {
	Materialize Handler
	Email       Handler
}

func (h WorkerHandlers) route(job Job) (Handler, error) {
	var handler Handler
	switch job.Type {
	case JobTypeMaterialize:
		handler = h.Materialize
	case JobTypeEmail:
		handler = h.Email
	}
	if handler == nil {
		return nil, Permanent(fmt.Errorf("no handler for job type %q", job.Type))
	}
	return handler, nil
}

// PoolConfig sizes the pool and bounds retries.
type PoolConfig struct {
	Workers     int
	MaxAttempts int
}

// StartWorkerPool launches cfg.Workers goroutines consuming both queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, cfg PoolConfig, handlers WorkerHandlers) {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	d := NewDispatcher(rdb)
	for i := 0; i < cfg.Workers; i++ {
		go runWorker(ctx, d, cfg, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", cfg.Workers)
}

func runWorker(ctx context.Context, d *Dispatcher, cfg PoolConfig, handlers WorkerHandlers, id int) {
	queues := []string{QueueMaterialize, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := d.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if popFailed(err) {
					log.Warn().Err(err).Int("worker", id).Msg("dequeue failed, backing off")
					sleepCtx(ctx, popBackoff)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, d, cfg, handlers, result[0], result[1])
		}
	}
}

// popBackoff is how long a worker waits after Redis fails a dequeue.
const popBackoff = 2 * time.Second

// popFailed reports whether a BRPOP error is a real failure. redis.Nil is the
// idle timeout; cancellation is shutdown.
func popFailed(err error) bool {
	return !errors.Is(err, redis.Nil) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// jobOutcome is what the pool does with a job after one run.
type jobOutcome int

const (
	outcomeDone jobOutcome = iota
	outcomeRetry
	outcomeDeadLetter
)

// runJob executes the job once and decides its fate. job.Attempts is
// incremented in place.
func runJob(ctx context.Context, handlers WorkerHandlers, job *Job, maxAttempts int) (jobOutcome, error) {
	handler, err := handlers.route(*job)
	if err != nil {
		return outcomeDeadLetter, err
	}
	job.Attempts++
	err = handler.Process(ctx, job.Payload)
	switch {
	case err == nil:
		return outcomeDone, nil
	case isPermanent(err) || job.Attempts >= maxAttempts:
		return outcomeDeadLetter, err
	default:
		return outcomeRetry, err
	}
}

func processJob(ctx context.Context, d *Dispatcher, cfg PoolConfig, handlers WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		// Park the raw text as a JSON string; it is not valid JSON itself.
		quoted, _ := json.Marshal(raw)
		d.deadLetter(ctx, queue, Job{Payload: quoted}, "undecodable envelope: "+err.Error())
		return
	}

	outcome, err := runJob(ctx, handlers, &job, cfg.MaxAttempts)
	switch outcome {
	case outcomeDone:
		log.Debug().Str("type", job.Type).Str("queue", queue).Int("attempt", job.Attempts).Msg("job done")
	case outcomeRetry:
		log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, requeueing")
		if pushErr := d.push(ctx, queue, job); pushErr != nil {
			log.Error().Err(pushErr).Str("queue", queue).Msg("requeue failed")
		}
	case outcomeDeadLetter:
		d.deadLetter(ctx, queue, job, err.Error())
	}
}
