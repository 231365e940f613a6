package sink

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPopTimeout = 3 * time.Second
	popRetryDelay     = time.Second
)

// Queue is a source of records pushed by running clients. *Redis satisfies it.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (Record, bool, error)
}

// Archiver moves records from a Queue into a Sink in batches, the way a
// historian service drains game actions into the database.
type Archiver struct {
	queue      Queue
	sink       Sink
	logger     *zap.Logger
	batchSize  int
	flushDelay time.Duration
	popTimeout time.Duration

	archived int
}

// NewArchiver creates an archiver with the default batch size and flush delay.
func NewArchiver(queue Queue, sink Sink, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{
		queue:      queue,
		sink:       sink,
		logger:     logger,
		batchSize:  defaultBatchSize,
		flushDelay: defaultFlushDelay,
		popTimeout: defaultPopTimeout,
	}
}

// Archived returns how many records were written so far. Not safe to call
// while Run is active.
func (a *Archiver) Archived() int { return a.archived }

// Run pops records until ctx is cancelled, then flushes the pending batch.
func (a *Archiver) Run(ctx context.Context) {
	batch := make([]Record, 0, a.batchSize)
	lastFlush := time.Now()

	for {
		if ctx.Err() != nil {
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			a.flush(flushCtx, batch)
			cancel()
			return
		}

		rec, ok, err := a.queue.Pop(ctx, a.popTimeout)
		if err != nil && ctx.Err() == nil {
			a.logger.Error("failed to pop journal record", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(popRetryDelay):
			}
		}
		if ok {
			batch = append(batch, rec)
		}

		if len(batch) >= a.batchSize || (len(batch) > 0 && time.Since(lastFlush) >= a.flushDelay) {
			a.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}
	}
}

func (a *Archiver) flush(ctx context.Context, batch []Record) {
	if len(batch) == 0 {
		return
	}
	if err := a.sink.Write(ctx, batch); err != nil {
		a.logger.Error("failed to archive journal batch",
			zap.Int("records", len(batch)),
			zap.Error(err),
		)
		return
	}
	a.archived += len(batch)
	a.logger.Info("archived journal batch", zap.Int("records", len(batch)))
}
