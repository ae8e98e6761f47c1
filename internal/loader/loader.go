// Package loader implements inspector.Loader on top of a metadata Resolver.
package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"docinspect/internal/inspector"
	"docinspect/internal/logging"
	"docinspect/internal/model"
	"docinspect/internal/service"
)

const defaultTimeout = 5 * time.Second

// Resolver fetches document info. service.InfoService satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, id string) (*model.DocumentInfo, error)
}

// Option configures a Loader.
type Option func(*shared)

// WithTimeout bounds every resolve. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *shared) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used for failed loads.
func WithLogger(l zerolog.Logger) Option {
	return func(s *shared) {
		s.log = logging.Component(l, "loader")
	}
}

// WithMetrics records load outcomes and durations.
func WithMetrics(m *Metrics) Option {
	return func(s *shared) {
		s.metrics = m
	}
}

// shared is the state common to a Loader and all of its sessions.
type shared struct {
	resolver Resolver
	timeout  time.Duration
	log      zerolog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	group    singleflight.Group

	// waiting counts callers blocked on a flight.
	waiting atomic.Int32

	// Every load of every session is also tracked here so the root can
	// cancel and drain all of them.
	mu   sync.Mutex
	seq  uint64
	all  map[uint64]context.CancelFunc
	busy sync.WaitGroup
}

func (s *shared) track(cancel context.CancelFunc) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.all[s.seq] = cancel
	s.busy.Add(1)
	return s.seq
}

func (s *shared) untrack(key uint64) {
	s.mu.Lock()
	delete(s.all, key)
	s.mu.Unlock()
}

func (s *shared) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, cancel := range s.all {
		cancel()
		delete(s.all, key)
	}
}

// Loader runs each load on its own goroutine. Concurrent loads of the same id
// share one resolve. Reset cancels everything still pending on this Loader;
// on the root Loader that includes every session.
type Loader struct {
	shared *shared
	root   bool

	mu      sync.Mutex
	pending map[uint64]context.CancelFunc
	wg      sync.WaitGroup
}

var _ inspector.Loader = (*Loader)(nil)

// New returns a root Loader resolving through r.
func New(r Resolver, opts ...Option) *Loader {
	s := &shared{
		resolver: r,
		timeout:  defaultTimeout,
		log:      zerolog.Nop(),
		tracer:   otel.Tracer("docinspect/internal/loader"),
		all:      make(map[uint64]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	l := newLoader(s)
	l.root = true
	return l
}

func newLoader(s *shared) *Loader {
	return &Loader{shared: s, pending: make(map[uint64]context.CancelFunc)}
}

// Session returns a Loader that shares resolver, dedupe group and metrics with l
// but tracks its own pending loads, so resetting it leaves l's other hosts alone.
// Resetting or waiting on the root still reaches the session's loads.
func (l *Loader) Session() *Loader {
	return newLoader(l.shared)
}

// Timeout is the bound applied to every resolve.
func (l *Loader) Timeout() time.Duration {
	return l.shared.timeout
}

// Load starts resolving id. callback runs at most once, on a loader goroutine,
// with nil when the document could not be resolved. It does not run when the
// load is cancelled by ctx or Reset.
func (l *Loader) Load(ctx context.Context, id string, callback func(*model.DocumentInfo)) {
	ctx, cancel := context.WithCancel(ctx)
	key := l.shared.track(cancel)

	l.mu.Lock()
	l.pending[key] = cancel
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		defer l.shared.busy.Done()
		defer l.release(key)

		info, ok := l.run(ctx, id)
		if !ok {
			return
		}
		callback(info)
	}()
}

// Reset cancels every pending load. Their callbacks will not run.
func (l *Loader) Reset() {
	if l.root {
		l.shared.cancelAll()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, cancel := range l.pending {
		cancel()
		delete(l.pending, key)
	}
}

// Pending reports how many loads have not finished yet. The root counts the
// loads of all sessions.
func (l *Loader) Pending() int {
	if l.root {
		l.shared.mu.Lock()
		defer l.shared.mu.Unlock()
		return len(l.shared.all)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Wait blocks until every load goroutine started on l has returned. The root
// waits for the loads of all sessions.
func (l *Loader) Wait() {
	if l.root {
		l.shared.busy.Wait()
		return
	}
	l.wg.Wait()
}

func (l *Loader) release(key uint64) {
	l.shared.untrack(key)
	l.mu.Lock()
	cancel, ok := l.pending[key]
	delete(l.pending, key)
	l.mu.Unlock()
	if ok {
		cancel()
	}
}

// run resolves id and reports whether the result should be delivered.
func (l *Loader) run(ctx context.Context, id string) (*model.DocumentInfo, bool) {
	s := l.shared
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "inspector.load", trace.WithAttributes(
		attribute.String("document.id", id),
	))
	defer span.End()

	// The flight may serve several callers, so it runs on its own context and
	// only links back to the caller that started it.
	link := trace.LinkFromContext(ctx)
	requestID := logging.RequestID(ctx)
	ch := s.group.DoChan(id, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		rctx, fspan := s.tracer.Start(rctx, "inspector.resolve",
			trace.WithLinks(link),
			trace.WithAttributes(
				attribute.String("document.id", id),
				attribute.String("request.id", requestID),
			),
		)
		defer fspan.End()

		info, err := s.resolver.Resolve(rctx, id)
		if err != nil {
			fspan.RecordError(err)
			fspan.SetStatus(codes.Error, err.Error())
		}
		return info, err
	})
	s.waiting.Add(1)
	defer s.waiting.Add(-1)

	select {
	case <-ctx.Done():
		s.metrics.observe(outcomeCancelled, 0)
		return nil, false
	case res := <-ch:
		span.SetAttributes(attribute.Bool("inspector.shared", res.Shared))
		// A Reset racing with completion wins.
		if ctx.Err() != nil {
			s.metrics.observe(outcomeCancelled, 0)
			return nil, false
		}
		elapsed := time.Since(start).Seconds()
		if res.Err != nil {
			if errors.Is(res.Err, service.ErrNotFound) || errors.Is(res.Err, service.ErrIDRequired) {
				s.metrics.observe(outcomeAbsent, elapsed)
				s.log.Debug().Str("event", "load_absent").Str("document_id", id).Msg("")
			} else {
				s.metrics.observe(outcomeError, elapsed)
				s.log.Error().
					Err(res.Err).
					Str("event", "load_failed").
					Str("document_id", id).
					Str("request_id", logging.RequestID(ctx)).
					Msg("")
			}
			return nil, true
		}
		info, _ := res.Val.(*model.DocumentInfo)
		if info == nil {
			s.metrics.observe(outcomeAbsent, elapsed)
			return nil, true
		}
		s.metrics.observe(outcomeFound, elapsed)
		return info, true
	}
}
