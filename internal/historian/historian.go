// internal/historian/historian.go pops action records from the Redis queue and
// persists them to Postgres in batches.
package historian

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/munchkin/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Source yields queued action records. Pop returns nil, nil when nothing
// arrived within wait.
type Source interface {
	Pop(ctx context.Context, wait time.Duration) (*models.ActionRecord, error)
}

// Sink stores action records and closes out idle sessions.
type Sink interface {
	SaveActions(ctx context.Context, recs []models.ActionRecord) error
	MarkAbandoned(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// Options tune batching and abandonment.
type Options struct {
	BatchSize     int
	FlushDelay    time.Duration
	Inactivity    time.Duration // duration until a session is marked "abandoned"
	PopWait       time.Duration
	SweepInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 20
	}
	if o.FlushDelay <= 0 {
		o.FlushDelay = 500 * time.Millisecond
	}
	if o.Inactivity <= 0 {
		o.Inactivity = 10 * time.Minute
	}
	if o.PopWait <= 0 {
		o.PopWait = 3 * time.Second
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute
	}
	return o
}

// Service drains a Source into a Sink.
type Service struct {
	src  Source
	sink Sink
	opts Options
	log  *logrus.Entry

	batchMu sync.Mutex
	batch   []models.ActionRecord

	activityMu   sync.Mutex
	lastActivity map[uuid.UUID]time.Time

	now func() time.Time
}

// New builds a Service.
func New(src Source, sink Sink, opts Options, logger *logrus.Logger) *Service {
	opts = opts.withDefaults()
	return &Service{
		src:          src,
		sink:         sink,
		opts:         opts,
		log:          logger.WithField("service", "historian"),
		batch:        make([]models.ActionRecord, 0, opts.BatchSize),
		lastActivity: make(map[uuid.UUID]time.Time),
		now:          time.Now,
	}
}

// Run reads, flushes and sweeps until ctx is done, then flushes what is left.
func (hs *Service) Run(ctx context.Context) error {
	hs.log.Info("historian started")
	defer hs.log.Info("historian stopped")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hs.readLoop(gctx) })
	g.Go(func() error { return hs.flushLoop(gctx) })
	g.Go(func() error { return hs.inactivityLoop(gctx) })
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return errors.Join(err, hs.Flush(flushCtx))
}

func (hs *Service) readLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rec, err := hs.src.Pop(ctx, hs.opts.PopWait)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			hs.log.WithError(err).Error("pop failed")
			continue
		}
		if rec == nil {
			continue
		}
		hs.Add(ctx, *rec)
	}
}

func (hs *Service) flushLoop(ctx context.Context) error {
	ticker := time.NewTicker(hs.opts.FlushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := hs.Flush(ctx); err != nil && ctx.Err() == nil {
				hs.log.WithError(err).Error("flush failed")
			}
		}
	}
}

func (hs *Service) inactivityLoop(ctx context.Context) error {
	ticker := time.NewTicker(hs.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			hs.Sweep(ctx)
		}
	}
}

// Add tracks rec's session and queues it, flushing once the batch is full.
func (hs *Service) Add(ctx context.Context, rec models.ActionRecord) {
	hs.activityMu.Lock()
	if endsSession(rec) {
		delete(hs.lastActivity, rec.SessionID)
	} else {
		hs.lastActivity[rec.SessionID] = hs.now()
	}
	hs.activityMu.Unlock()

	hs.batchMu.Lock()
	hs.batch = append(hs.batch, rec)
	full := len(hs.batch) >= hs.opts.BatchSize
	hs.batchMu.Unlock()

	if full {
		if err := hs.Flush(ctx); err != nil {
			hs.log.WithError(err).Error("flush failed")
		}
	}
}

// Flush writes the pending batch. On failure the records are put back so the
// next flush retries them.
func (hs *Service) Flush(ctx context.Context) error {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return nil
	}
	pending := hs.batch
	hs.batch = make([]models.ActionRecord, 0, hs.opts.BatchSize)
	hs.batchMu.Unlock()

	if err := hs.sink.SaveActions(ctx, pending); err != nil {
		hs.batchMu.Lock()
		hs.batch = append(pending, hs.batch...)
		hs.batchMu.Unlock()
		return err
	}
	hs.log.Debugf("Flushed %d actions to DB.", len(pending))
	return nil
}

// Pending reports how many records await a flush.
func (hs *Service) Pending() int {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	return len(hs.batch)
}

// Sweep marks every session idle for longer than the inactivity window as
// abandoned.
func (hs *Service) Sweep(ctx context.Context) {
	now := hs.now()
	var idle []uuid.UUID
	hs.activityMu.Lock()
	for id, last := range hs.lastActivity {
		if now.Sub(last) > hs.opts.Inactivity {
			idle = append(idle, id)
			delete(hs.lastActivity, id)
		}
	}
	hs.activityMu.Unlock()

	if len(idle) == 0 {
		return
	}
	// Pending actions of an idle session must land before its row is closed.
	if err := hs.Flush(ctx); err != nil {
		hs.log.WithError(err).Error("flush before sweep failed")
	}
	for _, id := range idle {
		changed, err := hs.sink.MarkAbandoned(ctx, id)
		if err != nil {
			hs.log.WithError(err).WithField("session", id).Error("failed to mark session abandoned")
			continue
		}
		if changed {
			hs.log.WithField("session", id).Info("marked session abandoned due to inactivity")
		}
	}
}

// endsSession reports whether rec is the phase change into END.
func endsSession(rec models.ActionRecord) bool {
	if rec.Type != "phase" {
		return false
	}
	phase, _ := rec.Payload["phase"].(string)
	return models.Phase(phase) == models.PhaseEnd
}
