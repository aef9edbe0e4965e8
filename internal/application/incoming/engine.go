package incoming

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/wms-platform/handy-terminal/internal/domain"
	"github.com/wms-platform/handy-terminal/internal/i18n"
	"github.com/wms-platform/handy-terminal/pkg/api"
	apperrors "github.com/wms-platform/handy-terminal/pkg/errors"
	"github.com/wms-platform/handy-terminal/pkg/logging"
)

var tracer = otel.Tracer("handy-terminal/incoming")

const workflowName = "incoming"

// Intent outcomes recorded in metrics
const (
	outcomeSuccess    = "success"
	outcomeFailure    = "failure"
	outcomeRejected   = "rejected"
	outcomeSkipped    = "skipped"
	outcomeSuperseded = "superseded"
)

// Metrics records engine activity
type Metrics interface {
	RecordIntent(workflow, intent, outcome string)
	RecordSubmission(flow, outcome string, duration time.Duration)
	SetStateSubscribers(count int)
}

// Config holds engine settings
type Config struct {
	// Debounce is the quiet period before a search is sent.
	Debounce time.Duration
	// SuccessDisplay is how long a success message stays before the refresh.
	SuccessDisplay time.Duration
	Messages       *i18n.Catalog
	Logger         *logging.Logger
	Metrics        Metrics
	// Clock returns the device's local time; "today" is its calendar date.
	Clock func() time.Time
}

// DefaultConfig returns the handheld defaults
func DefaultConfig() Config {
	return Config{
		Debounce:       300 * time.Millisecond,
		SuccessDisplay: 1500 * time.Millisecond,
		Messages:       i18n.For(i18n.LocaleJA),
		Clock:          time.Now,
	}
}

// Engine owns the incoming flow's state. Intents may be called from any
// goroutine; every state change is applied wholesale under one lock and
// published to subscribers as a snapshot.
type Engine struct {
	gateway  domain.IncomingGateway
	session  domain.Session
	messages *i18n.Catalog
	logger   *logging.Logger
	metrics  Metrics
	validate *validator.Validate
	now      func() time.Time

	successDisplay time.Duration
	productSearch  *debouncer
	locationSearch *debouncer

	// base scopes work the engine starts on its own: debounced searches and
	// post-submit refreshes. Close cancels it.
	base       context.Context
	cancelBase context.CancelFunc
	done       chan struct{}
	refreshes  sync.WaitGroup
	closeOnce  sync.Once

	mu          sync.Mutex
	state       State
	closed      bool
	subscribers map[string]chan State
}

// NewEngine creates an engine for the signed-in session
func NewEngine(gateway domain.IncomingGateway, session domain.Session, cfg Config) *Engine {
	defaults := DefaultConfig()
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaults.Debounce
	}
	if cfg.SuccessDisplay < 0 {
		cfg.SuccessDisplay = defaults.SuccessDisplay
	}
	if cfg.Messages == nil {
		cfg.Messages = defaults.Messages
	}
	if cfg.Clock == nil {
		cfg.Clock = defaults.Clock
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	base, cancel := context.WithCancel(context.Background())

	e := &Engine{
		gateway:        gateway,
		session:        session,
		messages:       cfg.Messages,
		logger:         cfg.Logger.WithComponent("incoming-engine"),
		metrics:        cfg.Metrics,
		validate:       api.Validator(),
		now:            cfg.Clock,
		successDisplay: cfg.SuccessDisplay,
		productSearch:  newDebouncer(cfg.Debounce),
		locationSearch: newDebouncer(cfg.Debounce),
		base:           base,
		cancelBase:     cancel,
		done:           make(chan struct{}),
		state:          initialState(),
		subscribers:    make(map[string]chan State),
	}

	if picker, ok := e.picker(); ok {
		e.state.Picker = &picker
	}

	return e
}

// State returns the current snapshot
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Subscribe returns a stream of snapshots starting with the current one.
// A subscriber that falls behind only sees the latest snapshot.
func (e *Engine) Subscribe() (string, <-chan State) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan State, 1)
	if e.closed {
		close(ch)
		return id, ch
	}

	ch <- e.state
	e.subscribers[id] = ch
	e.recordSubscribersLocked()
	return id, ch
}

// Unsubscribe stops and closes the stream with the given id
func (e *Engine) Unsubscribe(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ch, ok := e.subscribers[id]; ok {
		delete(e.subscribers, id)
		close(ch)
		e.recordSubscribersLocked()
	}
}

// Close stops pending searches and refreshes and closes every stream.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()

		close(e.done)
		e.cancelBase()
		e.productSearch.stop()
		e.locationSearch.stop()
		e.refreshes.Wait()

		e.mu.Lock()
		defer e.mu.Unlock()
		for id, ch := range e.subscribers {
			delete(e.subscribers, id)
			close(ch)
		}
		e.recordSubscribersLocked()
	})
}

// update applies fn to a copy of the state and publishes the result. fn
// returns false to leave the state untouched.
func (e *Engine) update(fn func(s *State) bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state
	if !fn(&next) {
		return false
	}
	e.state = next

	for _, ch := range e.subscribers {
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next:
			default:
			}
		}
	}
	return true
}

func (e *Engine) recordSubscribersLocked() {
	if e.metrics != nil {
		e.metrics.SetStateSubscribers(len(e.subscribers))
	}
}

func (e *Engine) picker() (domain.Picker, bool) {
	if e.session == nil {
		return domain.Picker{}, false
	}
	return e.session.Picker()
}

func (e *Engine) today() string {
	return e.now().Format(time.DateOnly)
}

func (e *Engine) recordIntent(intent, outcome string) {
	if e.metrics != nil {
		e.metrics.RecordIntent(workflowName, intent, outcome)
	}
}

// failed records a gateway failure and returns the message to surface.
// A canceled context is not a failure.
func (e *Engine) failed(ctx context.Context, intent string, err error) (string, bool) {
	if apperrors.IsCanceled(err) {
		e.recordIntent(intent, outcomeSuperseded)
		return "", false
	}

	e.recordIntent(intent, outcomeFailure)
	e.logger.WithContext(ctx).WithError(err).Warn("Intent failed",
		"intent", intent,
		"code", apperrors.CodeOf(err),
	)
	return e.messages.FailureMessage(err), true
}
