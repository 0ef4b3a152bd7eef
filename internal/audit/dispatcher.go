package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"taskhub/backend/internal/audit/domain"
)

const sinkTimeout = 5 * time.Second

// DropRecorder is told about every event that could not be queued.
type DropRecorder interface {
	AuditDropped(ctx context.Context)
}

// Dispatcher delivers audit events to its sinks from a single background goroutine. Submit never
// blocks: when the queue is full the event is dropped, counted and written to the error log.
// Sink failures are logged with the full event and never reach the submitter.
type Dispatcher struct {
	sinks  []Sink
	logger *zap.Logger
	drops  DropRecorder

	ch        chan *domain.AuditLog
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	failed    atomic.Uint64
	mu        sync.RWMutex // held for reading around sends, for writing when closing
	closed    bool
	closeOnce sync.Once
}

// NewDispatcher starts a dispatcher with a queue of size entries. Nil sinks are skipped.
// drops may be nil.
func NewDispatcher(size int, logger *zap.Logger, drops DropRecorder, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	live := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	d := &Dispatcher{
		sinks:  live,
		logger: logger,
		drops:  drops,
		ch:     make(chan *domain.AuditLog, size),
		done:   make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case entry := <-d.ch:
			d.deliver(entry)
		case <-d.done:
			for {
				select {
				case entry := <-d.ch:
					d.deliver(entry)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(entry *domain.AuditLog) {
	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		err := s.Emit(ctx, entry)
		cancel()
		if err != nil {
			d.failed.Add(1)
			d.logger.Error("audit: dead letter",
				append(entryFields(entry), zap.String("sink", s.Name()), zap.Error(err))...)
		}
	}
}

// Submit queues entry for delivery and returns immediately.
func (d *Dispatcher) Submit(ctx context.Context, entry *domain.AuditLog) {
	if d == nil || entry == nil {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(ctx, entry, "closed")
		return
	}
	select {
	case d.ch <- entry:
	default:
		d.drop(ctx, entry, "queue_full")
	}
}

func (d *Dispatcher) drop(ctx context.Context, entry *domain.AuditLog, reason string) {
	d.dropped.Add(1)
	if d.drops != nil {
		d.drops.AuditDropped(ctx)
	}
	d.logger.Error("audit: event dropped", append(entryFields(entry), zap.String("reason", reason))...)
}

// Close stops accepting events, drains the queue and waits for delivery to finish.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns the number of events that were never queued.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Failed returns the number of sink deliveries that returned an error.
func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}

func entryFields(e *domain.AuditLog) []zap.Field {
	return []zap.Field{
		zap.String("audit_id", e.ID),
		zap.String("action", e.Action),
		zap.String("org_id", e.OrgID),
		zap.String("user_id", e.UserID),
		zap.String("resource", e.Resource),
		zap.String("resource_id", e.ResourceID),
		zap.String("metadata", e.Metadata),
		zap.Time("created_at", e.CreatedAt),
	}
}
