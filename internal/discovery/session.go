package discovery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/metrics"
)

// State is the discovery input's position in its state machine.
type State string

const (
	StateIdle             State = "idle"
	StateQuerying         State = "querying"
	StateSuggesting       State = "suggesting"
	StateEmpty            State = "empty"
	StateFailed           State = "failed"
	StateResolvingDetails State = "resolving_details"
)

// Key is a keyboard action on the dropdown.
type Key string

const (
	KeyDown   Key = "down"
	KeyUp     Key = "up"
	KeyEnter  Key = "enter"
	KeyEscape Key = "escape"
)

// ParseKey parses a key name.
func ParseKey(s string) (Key, bool) {
	switch k := Key(strings.ToLower(strings.TrimSpace(s))); k {
	case KeyDown, KeyUp, KeyEnter, KeyEscape:
		return k, true
	default:
		return "", false
	}
}

var (
	// ErrSuperseded is returned for a query whose result was discarded
	// because newer input arrived first.
	ErrSuperseded = errors.New("place query superseded by newer input")

	// ErrSelectionInProgress is returned when a selection is attempted
	// while another is still resolving.
	ErrSelectionInProgress = errors.New("another place selection is in progress")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("discovery session closed")
)

const (
	msgQueryFailed  = "We couldn't load suggestions. Please try again."
	msgSelectFailed = "We couldn't load details for that place. Try another one."
)

// Snapshot is what the input and dropdown currently show.
type Snapshot struct {
	State       State        `json:"state"`
	Text        string       `json:"text"`
	Suggestions []Suggestion `json:"suggestions"`
	Highlight   int          `json:"highlight"`
	Open        bool         `json:"open"`
	Error       string       `json:"error,omitempty"`
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithOnChange registers the callback invoked with the new input text.
func WithOnChange(fn func(text string)) SessionOption {
	return func(s *Session) {
		s.onChange = fn
	}
}

// WithOnPlaceSelect registers the callback that receives the enriched place.
// Ownership of details passes to the callback.
func WithOnPlaceSelect(fn func(details *PlaceDetails)) SessionOption {
	return func(s *Session) {
		s.onPlaceSelect = fn
	}
}

// WithDebounce overrides the service's input debounce interval.
func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) {
		s.debounce = d
	}
}

// Session is one discovery input. Results are applied last-request-wins:
// every query carries a sequence number and is applied only if no newer
// input arrived while it was in flight. Callbacks run without the session
// lock held.
type Session struct {
	svc      *Service
	logger   zerolog.Logger
	debounce time.Duration

	onChange      func(string)
	onPlaceSelect func(*PlaceDetails)

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	seq         uint64
	text        string
	state       State
	suggestions []Suggestion
	highlight   int
	open        bool
	errMsg      string
	selecting   bool
	token       string
	timer       *time.Timer
	closed      bool
}

// NewSession starts an idle session.
func NewSession(svc *Service, opts ...SessionOption) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		svc:       svc,
		logger:    svc.logger,
		debounce:  svc.Debounce(),
		ctx:       ctx,
		cancel:    cancel,
		state:     StateIdle,
		highlight: -1,
		token:     uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	suggestions := make([]Suggestion, len(s.suggestions))
	copy(suggestions, s.suggestions)
	return Snapshot{
		State:       s.state,
		Text:        s.text,
		Suggestions: suggestions,
		Highlight:   s.highlight,
		Open:        s.open,
		Error:       s.errMsg,
	}
}

// Input records new input text and schedules a debounced query. Blank text
// resets to Idle without querying.
func (s *Session) Input(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	seq, blank := s.beginInputLocked(text)
	if !blank {
		query := text
		s.timer = time.AfterFunc(s.debounce, func() {
			_, _ = s.query(s.ctx, seq, query)
		})
	}
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(text)
	}
}

// Search records new input text and queries immediately. It returns the
// applied suggestions, or ErrSuperseded if newer input won.
func (s *Session) Search(ctx context.Context, text string) ([]Suggestion, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	seq, blank := s.beginInputLocked(text)
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(text)
	}
	if blank {
		return []Suggestion{}, nil
	}
	return s.query(ctx, seq, text)
}

// beginInputLocked invalidates older queries and pending timers and moves to
// Querying, or to Idle for blank text.
func (s *Session) beginInputLocked(text string) (uint64, bool) {
	s.seq++
	s.text = text
	s.stopTimerLocked()

	if strings.TrimSpace(text) == "" {
		s.resetLocked()
		metrics.DiscoveryQueriesTotal.WithLabelValues("skipped").Inc()
		return s.seq, true
	}
	s.state = StateQuerying
	s.errMsg = ""
	return s.seq, false
}

func (s *Session) query(ctx context.Context, seq uint64, text string) ([]Suggestion, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if seq != s.seq {
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	token := s.token
	s.mu.Unlock()

	suggestions, err := s.svc.Autocomplete(ctx, text, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if seq != s.seq {
		metrics.SupersededResultsTotal.WithLabelValues("discovery").Inc()
		s.logger.Debug().Uint64("seq", seq).Uint64("latest", s.seq).Msg("discarding superseded suggestions")
		return nil, ErrSuperseded
	}

	s.highlight = -1
	if err != nil {
		s.state = StateFailed
		s.suggestions = nil
		s.open = false
		s.errMsg = msgQueryFailed
		return nil, err
	}
	s.suggestions = suggestions
	s.errMsg = ""
	if len(suggestions) == 0 {
		s.state = StateEmpty
		s.open = false
	} else {
		s.state = StateSuggesting
		s.open = true
	}
	out := make([]Suggestion, len(suggestions))
	copy(out, suggestions)
	return out, nil
}

// Key applies a keyboard action. Enter with a highlighted suggestion selects
// it and returns the resolved details; every other key returns (nil, nil).
func (s *Session) Key(ctx context.Context, key Key) (*PlaceDetails, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	switch key {
	case KeyDown:
		if s.open && s.highlight < len(s.suggestions)-1 {
			s.highlight++
		}
	case KeyUp:
		if s.open && s.highlight > -1 {
			s.highlight--
		}
	case KeyEscape:
		s.open = false
		s.highlight = -1
	case KeyEnter:
		if s.open && s.highlight >= 0 && s.highlight < len(s.suggestions) {
			chosen := s.suggestions[s.highlight]
			s.mu.Unlock()
			return s.Select(ctx, chosen)
		}
	}
	s.mu.Unlock()
	return nil, nil
}

// ClickOutside closes the dropdown without touching the text.
func (s *Session) ClickOutside() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

// Clear empties the input and returns to Idle.
func (s *Session) Clear() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	s.text = ""
	s.stopTimerLocked()
	s.resetLocked()
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange("")
	}
}

// Select resolves one suggestion. On success the details go to the
// onPlaceSelect callback, the input is cleared and the session returns to
// Idle. On failure the error message is shown and suggestions stay visible.
func (s *Session) Select(ctx context.Context, sug Suggestion) (*PlaceDetails, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.selecting {
		s.mu.Unlock()
		return nil, ErrSelectionInProgress
	}
	s.selecting = true
	s.seq++
	seq := s.seq
	s.stopTimerLocked()
	s.state = StateResolvingDetails
	s.errMsg = ""
	s.mu.Unlock()

	details, err := s.svc.Resolve(ctx, sug.ID)

	s.mu.Lock()
	s.selecting = false
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if err != nil {
		// Input typed while resolving owns the dropdown now.
		if s.seq == seq {
			s.state = StateFailed
			s.errMsg = msgSelectFailed
			s.open = len(s.suggestions) > 0
		}
		s.mu.Unlock()
		s.logger.Warn().Err(err).Str("place_id", sug.ID).Msg("place selection failed")
		return nil, err
	}

	// Resolved settles straight back to Idle with a fresh provider session.
	// Queries and debounce timers started while resolving belong to text that
	// is being cleared, so they are invalidated too.
	s.seq++
	s.stopTimerLocked()
	s.text = ""
	s.resetLocked()
	s.token = uuid.NewString()
	onPlaceSelect := s.onPlaceSelect
	onChange := s.onChange
	s.mu.Unlock()

	if onPlaceSelect != nil {
		onPlaceSelect(details)
	}
	if onChange != nil {
		onChange("")
	}
	return details, nil
}

// Close stops any pending debounced query. Later calls are no-ops or fail
// with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.cancel()
}

func (s *Session) resetLocked() {
	s.state = StateIdle
	s.suggestions = nil
	s.highlight = -1
	s.open = false
	s.errMsg = ""
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
