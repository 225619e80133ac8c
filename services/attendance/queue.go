package attendanced

import (
	"attendance-backend/lib/attendance"
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var queueDepth, _ = meter.Int64UpDownCounter("queue_depth")
var queueWait, _ = meter.Float64Histogram("queue_wait")

type Retriever interface {
	Retrieve(ctx context.Context, credential attendance.Credential) (attendance.Record, error)
}

// Handle is the eventual result of a submitted request, it is fulfilled
// exactly once.
type Handle struct {
	Id string

	once   sync.Once
	done   chan struct{}
	record attendance.Record
	err    error
}

func newHandle(id string) *Handle {
	return &Handle{
		Id:   id,
		done: make(chan struct{}),
	}
}

func (h *Handle) fulfill(record attendance.Record, err error) {
	h.once.Do(func() {
		h.record = record
		h.err = err
		close(h.done)
	})
}

// Done is closed once the result is available.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the result is available or ctx is done. giving up on
// a handle does not cancel the request, it still runs in its turn.
func (h *Handle) Wait(ctx context.Context) (attendance.Record, error) {
	select {
	case <-h.done:
		return h.record, h.err
	case <-ctx.Done():
		return attendance.Record{}, ctx.Err()
	}
}

// Result blocks until the result is available.
func (h *Handle) Result() (attendance.Record, error) {
	<-h.done
	return h.record, h.err
}

type request struct {
	credential attendance.Credential
	handle     *Handle
	enqueuedAt time.Time
	// the submitter's span, linked from the span of the retrieval
	link trace.Link
}

// Queue runs submitted retrievals one at a time in submission order, so at
// most one browser session is open at once.
type Queue struct {
	retriever Retriever

	mu      sync.Mutex
	waiting []request
	stopped bool
	// buffered with a capacity of 1, a pending signal is enough to wake
	// the worker for any number of submissions
	signal  chan struct{}

	fallbackIds atomic.Uint64
}

func NewQueue(retriever Retriever) *Queue {
	return &Queue{
		retriever: retriever,
		waiting:   make([]request, 0),
		signal:    make(chan struct{}, 1),
	}
}

func (q *Queue) newId() string {
	id, err := random.String(8)
	if err != nil {
		return "req-" + strconv.FormatUint(q.fallbackIds.Add(1), 10)
	}
	return id
}

// Submit enqueues a retrieval for credential and returns immediately. ctx
// is only used to correlate the request with its submitter, cancelling it
// does not withdraw the request.
func (q *Queue) Submit(ctx context.Context, credential attendance.Credential) *Handle {
	handle := newHandle(q.newId())

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		handle.fulfill(attendance.Record{}, stoppedError())
		return handle
	}
	q.waiting = append(q.waiting, request{
		credential: credential,
		handle:     handle,
		enqueuedAt: time.Now(),
		link:       trace.LinkFromContext(ctx),
	})
	position := len(q.waiting)
	q.mu.Unlock()

	queueDepth.Add(ctx, 1)
	slog.DebugContext(
		ctx, "queued attendance request",
		"request_id", handle.Id,
		"username", credential.Identifier,
		"position", position,
	)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return handle
}

// Len returns the number of requests waiting, excluding the one running.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

func (q *Queue) dequeueNext() (request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.waiting) == 0 {
		return request{}, false
	}
	req := q.waiting[0]
	q.waiting[0] = request{}
	q.waiting = q.waiting[1:]
	return req, true
}

// Run is the queue's only worker, it blocks until ctx is done. requests
// still waiting at that point resolve to ErrQueueStopped.
func (q *Queue) Run(ctx context.Context) {
	slog.InfoContext(ctx, "attendance queue started")

	for {
		select {
		case <-ctx.Done():
			q.stop(ctx)
			return
		default:
		}

		req, ok := q.dequeueNext()
		if !ok {
			select {
			case <-q.signal:
			case <-ctx.Done():
				q.stop(ctx)
				return
			}
			continue
		}
		q.process(ctx, req)
	}
}

func (q *Queue) process(ctx context.Context, req request) {
	queueDepth.Add(ctx, -1)
	queueWait.Record(ctx, time.Since(req.enqueuedAt).Seconds())

	// a started retrieval runs to completion even when the queue stops
	ctx, span := tracer.Start(context.WithoutCancel(ctx), "Queue:process", trace.WithLinks(req.link))
	defer span.End()
	span.SetAttributes(attribute.String("request_id", req.handle.Id))

	record, err := q.retrieve(ctx, req)
	req.handle.fulfill(record, err)
}

func (q *Queue) retrieve(ctx context.Context, req request) (record attendance.Record, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		slog.ErrorContext(
			ctx, "attendance retrieval panicked",
			"request_id", req.handle.Id,
			"panic", r,
			"stack", string(debug.Stack()),
		)
		record = attendance.Record{}
		err = &Error{
			Kind:    KindQueue,
			Message: fmt.Sprintf("unexpected failure while processing request: %v", r),
		}
	}()
	return q.retriever.Retrieve(ctx, req.credential)
}

func (q *Queue) stop(ctx context.Context) {
	q.mu.Lock()
	q.stopped = true
	waiting := q.waiting
	q.waiting = nil
	q.mu.Unlock()

	if len(waiting) > 0 {
		queueDepth.Add(context.WithoutCancel(ctx), -int64(len(waiting)))
	}
	for _, req := range waiting {
		req.handle.fulfill(attendance.Record{}, stoppedError())
	}
	slog.InfoContext(ctx, "attendance queue stopped", "abandoned", len(waiting))
}
