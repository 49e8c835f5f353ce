// Package syncqueue drains deferred remote writes with bounded retries.
package syncqueue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/larmaysee/typier-sub002/internal/localstore"
	"github.com/larmaysee/typier-sub002/internal/model"
	"github.com/larmaysee/typier-sub002/internal/remote"
)

// Local store keys owned by the queue.
const (
	queueKey    = "typing_sync_queue"
	lastSyncKey = "typing_sync_last"
)

// Defaults for the drain schedule and retry policy.
const (
	DefaultInterval     = 30 * time.Second
	DefaultInitialDelay = 5 * time.Second
	DefaultBackoff      = 5 * time.Second
	DefaultMaxRetries   = 3
)

// Executor performs one queued operation against the remote store.
type Executor interface {
	Execute(ctx context.Context, op model.QueuedOperation) error
}

// RemoteExecutor executes queued operations against a document store.
// Deleting an already-deleted document counts as success so retried
// deletes stay idempotent.
type RemoteExecutor struct {
	Client     remote.Client
	Collection string
}

// Execute implements Executor.
func (e RemoteExecutor) Execute(ctx context.Context, op model.QueuedOperation) error {
	switch op.Type {
	case model.OpSave:
		if op.Test == nil {
			return fmt.Errorf("queued save %s has no payload", op.ID)
		}
		return e.Client.Create(ctx, e.Collection, op.Test.ID, op.Test)
	case model.OpDelete:
		err := e.Client.Delete(ctx, e.Collection, op.TestID)
		if remote.IsNotFound(err) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown queued operation type %q", op.Type)
	}
}

// Config tunes the drain schedule and retry policy. Zero values fall
// back to the defaults.
type Config struct {
	Interval     time.Duration
	InitialDelay time.Duration
	Backoff      time.Duration
	MaxRetries   int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = DefaultInitialDelay
	}
	if c.Backoff <= 0 {
		c.Backoff = DefaultBackoff
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	return c
}

// Processor owns the retry queue: dedup enqueueing, scheduled drains
// and status introspection. The queue is one serialized list in the
// local store; every mutation goes through a single-writer lock, and
// only one drain runs at a time.
type Processor struct {
	store localstore.Store
	exec  Executor
	cfg   Config
	now   func() time.Time

	drainMu sync.Mutex // single in-flight drain
	queueMu sync.Mutex // whole-list read/modify/write

	scheduler    *gocron.Scheduler
	initialTimer *time.Timer
	stopOnce     sync.Once
}

// Option customizes the processor.
type Option func(*Processor)

// WithClock injects a deterministic time source.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// New creates a processor over the given store and executor.
func New(store localstore.Store, exec Executor, cfg Config, opts ...Option) *Processor {
	p := &Processor{
		store: store,
		exec:  exec,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the fixed-interval drain loop plus one delayed
// initial run. Stop releases both.
func (p *Processor) Start() {
	if p.scheduler != nil {
		return
	}
	p.scheduler = gocron.NewScheduler(time.UTC)
	if _, err := p.scheduler.Every(p.cfg.Interval).Do(p.runScheduledDrain); err != nil {
		log.Printf("syncqueue: failed to schedule drain: %v", err)
	}
	p.scheduler.StartAsync()
	p.initialTimer = time.AfterFunc(p.cfg.InitialDelay, p.runScheduledDrain)
}

// Stop terminates the drain schedule. In-flight drains finish.
func (p *Processor) Stop() {
	p.stopOnce.Do(func() {
		if p.initialTimer != nil {
			p.initialTimer.Stop()
		}
		if p.scheduler != nil {
			p.scheduler.Stop()
		}
	})
}

func (p *Processor) runScheduledDrain() {
	if err := p.SyncNow(context.Background()); err != nil {
		log.Printf("syncqueue: drain failed: %v", err)
	}
}

// Enqueue adds an operation, replacing any queued entry with the same
// dedup id. The replacement carries the latest payload and a fresh
// retry budget.
func (p *Processor) Enqueue(ctx context.Context, op model.QueuedOperation) error {
	op.Timestamp = p.now()
	op.RetryCount = 0
	return p.mutateQueue(ctx, func(queue []model.QueuedOperation) []model.QueuedOperation {
		for i := range queue {
			if queue[i].ID == op.ID {
				queue[i] = op
				return queue
			}
		}
		return append(queue, op)
	})
}

// Pending returns the live queue length.
func (p *Processor) Pending(ctx context.Context) (int, error) {
	queue, err := p.loadQueue(ctx)
	if err != nil {
		return 0, err
	}
	return len(queue), nil
}

// Status reports the queue length, the last successful sync and the
// earliest scheduled retry.
func (p *Processor) Status(ctx context.Context) (model.SyncStatus, error) {
	queue, err := p.loadQueue(ctx)
	if err != nil {
		return model.SyncStatus{}, err
	}
	status := model.SyncStatus{Pending: len(queue)}
	for i := range queue {
		if status.NextRetry == nil || queue[i].Timestamp.Before(*status.NextRetry) {
			ts := queue[i].Timestamp
			status.NextRetry = &ts
		}
	}
	last, ok, err := localstore.GetJSON[time.Time](ctx, p.store, lastSyncKey)
	if err != nil {
		return model.SyncStatus{}, err
	}
	if ok {
		status.LastSync = &last
	}
	return status, nil
}

// SyncNow runs one drain cycle. Concurrent callers serialize behind
// the in-flight drain; the queue never grows from a drain step.
func (p *Processor) SyncNow(ctx context.Context) error {
	p.drainMu.Lock()
	defer p.drainMu.Unlock()

	queue, err := p.loadQueue(ctx)
	if err != nil {
		return err
	}
	now := p.now()
	for _, op := range queue {
		if op.Timestamp.After(now) {
			continue
		}
		execErr := p.exec.Execute(ctx, op)
		if stepErr := p.settle(ctx, op, execErr); stepErr != nil {
			return stepErr
		}
	}
	return nil
}

// settle applies the outcome of one executed operation to the stored
// queue. Success removes the entry; failure increments the retry count
// and pushes the schedule forward, dropping the entry once it reaches
// the ceiling.
func (p *Processor) settle(ctx context.Context, op model.QueuedOperation, execErr error) error {
	if execErr == nil {
		if err := localstore.SetJSON(ctx, p.store, lastSyncKey, p.now()); err != nil {
			return err
		}
		return p.mutateQueue(ctx, func(queue []model.QueuedOperation) []model.QueuedOperation {
			return removeByID(queue, op.ID)
		})
	}
	return p.mutateQueue(ctx, func(queue []model.QueuedOperation) []model.QueuedOperation {
		for i := range queue {
			if queue[i].ID != op.ID {
				continue
			}
			queue[i].RetryCount++
			if queue[i].RetryCount >= p.cfg.MaxRetries {
				log.Printf("syncqueue: dropping %s after %d attempts: %v", op.ID, queue[i].RetryCount, execErr)
				return removeByID(queue, op.ID)
			}
			queue[i].Timestamp = p.now().Add(p.cfg.Backoff)
			return queue
		}
		return queue
	})
}

func removeByID(queue []model.QueuedOperation, id string) []model.QueuedOperation {
	out := queue[:0]
	for _, entry := range queue {
		if entry.ID != id {
			out = append(out, entry)
		}
	}
	return out
}

func (p *Processor) loadQueue(ctx context.Context) ([]model.QueuedOperation, error) {
	queue, _, err := localstore.GetJSON[[]model.QueuedOperation](ctx, p.store, queueKey)
	return queue, err
}

func (p *Processor) mutateQueue(ctx context.Context, mutate func([]model.QueuedOperation) []model.QueuedOperation) error {
	p.queueMu.Lock()
	defer p.queueMu.Unlock()
	queue, err := p.loadQueue(ctx)
	if err != nil {
		return err
	}
	queue = mutate(queue)
	if len(queue) == 0 {
		return p.store.RemoveItem(ctx, queueKey)
	}
	return localstore.SetJSON(ctx, p.store, queueKey, queue)
}
