package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/coderopp/smartneed/internal/domain/search/filter"
	"github.com/coderopp/smartneed/internal/domain/search/result"
)

// ErrNotRetryable is returned by Retry when the session is not in the
// error state.
var ErrNotRetryable = errors.New("session: retry is only available from the error state")

// ErrClosed is returned by operations on a closed manager.
var ErrClosed = errors.New("session: manager is closed")

const (
	defaultRequestTimeout = 10 * time.Second
	updatesBuffer         = 16
)

// Searcher executes one search request. pkg/client satisfies this via a
// small adapter; tests supply fakes.
type Searcher interface {
	Search(ctx context.Context, text string, filters filter.Set) (result.Page, error)
}

// Manager drives one logical search session. All methods are safe for
// concurrent use.
type Manager struct {
	searcher    Searcher
	transcriber Transcriber
	timeout     time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	seq     uint64
	state   Snapshot
	cancel  context.CancelFunc
	updates chan Snapshot
	closed  bool

	lastText    string
	lastFilters filter.Set
	pendingText string
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout bounds each search request. Zero or negative keeps the
// default of 10s.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithLogger attaches a logger for discarded-response diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithTranscriber enables voice-input capture.
func WithTranscriber(t Transcriber) Option {
	return func(m *Manager) { m.transcriber = t }
}

// New creates a Manager in the idle state.
func New(s Searcher, opts ...Option) *Manager {
	m := &Manager{
		searcher:    s,
		transcriber: Unavailable{},
		timeout:     defaultRequestTimeout,
		logger:      zap.NewNop(),
		state:       Snapshot{Status: StatusIdle},
		updates:     make(chan Snapshot, updatesBuffer),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Updates streams state snapshots as they change. Slow consumers drop
// the oldest pending snapshot rather than blocking the session. The
// channel is closed by Close.
func (m *Manager) Updates() <-chan Snapshot {
	return m.updates
}

// SetFilters stages a filter set for subsequent submissions. It does
// not re-run the current query.
func (m *Manager) SetFilters(f filter.Set) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.lastFilters = f
}

// Submit starts a search for text. A blank query never reaches the
// server: the snapshot gains a validation notice and the status is
// unchanged. Submitting while a request is in flight supersedes it.
func (m *Manager) Submit(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	text = strings.TrimSpace(text)
	if text == "" {
		snap := m.state
		snap.Notice = "enter a search query"
		m.setState(snap)
		return nil
	}
	m.submitLocked(text, m.lastFilters)
	return nil
}

// SubmitPending submits the transcript captured by CaptureVoice. With
// no pending transcript it behaves like a blank Submit.
func (m *Manager) SubmitPending() error {
	m.mu.Lock()
	text := m.pendingText
	m.pendingText = ""
	m.mu.Unlock()
	return m.Submit(text)
}

// Retry re-submits the last query text and filters. It is only
// available from the error state.
func (m *Manager) Retry() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.state.Status != StatusError {
		return ErrNotRetryable
	}
	m.submitLocked(m.lastText, m.lastFilters)
	return nil
}

// CaptureVoice records one voice transcript and stages it as the text
// for the next SubmitPending. It never touches the result state.
func (m *Manager) CaptureVoice(ctx context.Context) (string, error) {
	text, err := m.transcriber.Transcribe(ctx)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrClosed
	}
	m.pendingText = text
	snap := m.state
	snap.PendingText = text
	m.setState(snap)
	return text, nil
}

// Close tears the session down, cancelling any in-flight request and
// closing the updates channel.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	close(m.updates)
}

// submitLocked starts the request goroutine. Caller holds the lock.
func (m *Manager) submitLocked(text string, filters filter.Set) {
	if m.cancel != nil {
		m.cancel()
	}
	m.seq++
	seq := m.seq
	m.lastText = text
	m.lastFilters = filters

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	m.cancel = cancel

	m.setState(Snapshot{
		Status:  StatusLoading,
		Query:   text,
		Filters: filters,
	})

	go m.run(ctx, cancel, seq, text, filters)
}

func (m *Manager) run(
	ctx context.Context, cancel context.CancelFunc,
	seq uint64, text string, filters filter.Set,
) {
	defer cancel()
	start := time.Now()

	type outcome struct {
		page result.Page
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		page, err := m.searcher.Search(ctx, text, filters)
		done <- outcome{page: page, err: err}
	}()

	// Do not wait on a searcher that ignores cancellation. Once the
	// context expires the session moves to the error state and any
	// late result is dropped.
	select {
	case out := <-done:
		elapsed := time.Since(start)
		err := out.err
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		m.apply(seq, text, filters, out.page, elapsed, err)
	case <-ctx.Done():
		m.apply(seq, text, filters, result.Page{}, time.Since(start), ctx.Err())
	}
}

func (m *Manager) apply(
	seq uint64, text string, filters filter.Set,
	page result.Page, elapsed time.Duration, err error,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if seq != m.seq {
		m.logger.Debug("discarding superseded search response",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", m.seq),
			zap.String("query", text))
		return
	}

	if err != nil {
		m.setState(Snapshot{
			Status:      StatusError,
			Query:       text,
			Filters:     filters,
			ErrCategory: classify(err),
			ErrMessage:  err.Error(),
		})
		return
	}

	took := page.Took
	if took <= 0 {
		took = elapsed
	}
	m.setState(Snapshot{
		Status:       StatusSuccess,
		Query:        text,
		Filters:      filters,
		Results:      page.Results,
		TotalMatches: page.TotalMatches,
		Took:         took,
	})
}

// setState records and publishes a snapshot. Caller holds the lock.
func (m *Manager) setState(snap Snapshot) {
	m.state = snap
	for {
		select {
		case m.updates <- snap:
			return
		default:
		}
		// Buffer full: drop the oldest pending snapshot.
		select {
		case <-m.updates:
		default:
		}
	}
}
