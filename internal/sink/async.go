package sink

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrBufferFull is returned by Enqueue when the worker has fallen behind.
var ErrBufferFull = errors.New("sink buffer full")

const (
	defaultBatchSize  = 20
	defaultFlushDelay = 500 * time.Millisecond
	shutdownTimeout   = 5 * time.Second
)

// Async fans records out to one or more sinks from a single worker goroutine.
// Record never blocks: when the buffer is full the record is dropped.
type Async struct {
	sessionID  uuid.UUID
	sinks      []Sink
	queue      chan Record
	logger     *zap.Logger
	batchSize  int
	flushDelay time.Duration

	seqMu   sync.Mutex
	seq     int
	dropped atomic.Int64
}

// NewAsync creates a worker with room for buffer pending records.
func NewAsync(sessionID uuid.UUID, buffer int, logger *zap.Logger, sinks ...Sink) *Async {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 1
	}
	return &Async{
		sessionID:  sessionID,
		sinks:      sinks,
		queue:      make(chan Record, buffer),
		logger:     logger,
		batchSize:  defaultBatchSize,
		flushDelay: defaultFlushDelay,
	}
}

func (a *Async) nextSeq() int {
	a.seqMu.Lock()
	defer a.seqMu.Unlock()
	seq := a.seq
	a.seq++
	return seq
}

// RecordRoster queues a player list. It satisfies game.RosterRecorder.
func (a *Async) RecordRoster(infos []protocol.PlayerInfo) {
	seq := a.nextSeq()
	if err := a.Enqueue(NewRosterRecord(a.sessionID, seq, infos, time.Now())); err != nil {
		a.logger.Warn("dropping journal roster",
			zap.Int("seq", seq),
			zap.Int("players", len(infos)),
			zap.Error(err),
		)
	}
}

// Record queues ev. It satisfies game.EventRecorder.
func (a *Async) Record(ev protocol.Event) {
	seq := a.nextSeq()
	if err := a.Enqueue(NewRecord(a.sessionID, seq, ev, time.Now())); err != nil {
		a.logger.Warn("dropping journal record",
			zap.Int("seq", seq),
			zap.Stringer("type", ev.Type),
			zap.Error(err),
		)
	}
}

// Enqueue queues rec without blocking.
func (a *Async) Enqueue(rec Record) error {
	select {
	case a.queue <- rec:
		return nil
	default:
		a.dropped.Add(1)
		return ErrBufferFull
	}
}

// Dropped returns how many records were discarded because the buffer was full.
func (a *Async) Dropped() int64 {
	return a.dropped.Load()
}

// Run writes queued records in batches until ctx is cancelled, then flushes
// whatever is still queued.
func (a *Async) Run(ctx context.Context) {
	ticker := time.NewTicker(a.flushDelay)
	defer ticker.Stop()

	batch := make([]Record, 0, a.batchSize)
	for {
		select {
		case <-ctx.Done():
			batch = a.drain(batch)
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			a.flush(flushCtx, batch)
			cancel()
			return

		case rec := <-a.queue:
			batch = append(batch, rec)
			if len(batch) >= a.batchSize {
				a.flush(ctx, batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			a.flush(ctx, batch)
			batch = batch[:0]
		}
	}
}

func (a *Async) drain(batch []Record) []Record {
	for {
		select {
		case rec := <-a.queue:
			batch = append(batch, rec)
		default:
			return batch
		}
	}
}

func (a *Async) flush(ctx context.Context, batch []Record) {
	if len(batch) == 0 {
		return
	}
	for _, s := range a.sinks {
		if err := s.Write(ctx, batch); err != nil {
			a.logger.Error("failed to write journal batch",
				zap.Int("records", len(batch)),
				zap.Error(err),
			)
		}
	}
	a.logger.Debug("flushed journal batch", zap.Int("records", len(batch)))
}

// Close releases every sink.
func (a *Async) Close() error {
	var errs []error
	for _, s := range a.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
