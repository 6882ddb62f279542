package replica

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 5 * time.Second

type pendingWrite struct {
	ctx    context.Context
	kind   Kind
	id     uint
	fields Fields
}

// Syncer runs replica writes off the caller's critical path. Writes to one document are
// applied in the order Mirror was called; different documents are written concurrently.
type Syncer struct {
	store   Store
	timeout time.Duration
	now     func() time.Time

	mu     sync.Mutex
	closed bool
	// queues holds the writes waiting per document path. A path is present
	// exactly while a worker goroutine is draining it.
	queues map[string][]pendingWrite
	wg     sync.WaitGroup
}

func NewSyncer(store Store, timeout time.Duration) *Syncer {
	if store == nil {
		store = NopStore{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Syncer{
		store:   store,
		timeout: timeout,
		now:     time.Now,
		queues:  map[string][]pendingWrite{},
	}
}

// Mirror queues an upsert of fields into kind/id and returns immediately.
// ctx only contributes values; its cancellation does not stop the write.
func (s *Syncer) Mirror(ctx context.Context, kind Kind, id uint, fields Fields) {
	doc := make(Fields, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	doc["updated_at"] = s.now().UTC().Format(time.RFC3339)

	path := DocumentPath(kind, id)
	write := pendingWrite{ctx: context.WithoutCancel(ctx), kind: kind, id: id, fields: doc}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		zap.L().Warn("replica mirror dropped after shutdown", zap.String("doc", path))
		return
	}
	queue, running := s.queues[path]
	s.queues[path] = append(queue, write)
	s.wg.Add(1)
	s.mu.Unlock()

	if !running {
		go s.drain(path)
	}
}

// drain applies the queued writes of one document until its queue is empty.
func (s *Syncer) drain(path string) {
	for {
		s.mu.Lock()
		queue := s.queues[path]
		if len(queue) == 0 {
			delete(s.queues, path)
			s.mu.Unlock()
			return
		}
		write := queue[0]
		s.queues[path] = queue[1:]
		s.mu.Unlock()

		s.apply(write)
		s.wg.Done()
	}
}

func (s *Syncer) apply(w pendingWrite) {
	defer func() {
		if r := recover(); r != nil {
			s.warn(&SyncWarning{Kind: w.kind, ID: w.id, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	ctx, cancel := context.WithTimeout(w.ctx, s.timeout)
	defer cancel()

	if err := s.store.Upsert(ctx, w.kind, w.id, w.fields); err != nil {
		s.warn(&SyncWarning{Kind: w.kind, ID: w.id, Err: err})
		return
	}

	zap.L().Debug("replica mirrored", zap.String("doc", DocumentPath(w.kind, w.id)))
}

// Wait blocks until every mirror queued so far has been applied.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

// Close stops accepting mirrors, drains queued ones and closes the store.
func (s *Syncer) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for replica mirrors -> %w", ctx.Err())
	}

	return s.store.Close(ctx)
}

func (s *Syncer) warn(w *SyncWarning) {
	zap.L().Warn("replica mirror failed",
		zap.String("kind", string(w.Kind)),
		zap.Uint("id", w.ID),
		zap.Error(w),
	)
}
