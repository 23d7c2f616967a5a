package quiz

import (
	"fmt"
	"sync"
	"time"

	"portal-quiz-service/internal/domain"
)

// State is the position of an engine in the quiz lifecycle.
type State int

const (
	StateLoading State = iota
	StateAwaitingSelection
	StateAwaitingSubmit
	StateRevealed
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAwaitingSelection:
		return "awaitingSelection"
	case StateAwaitingSubmit:
		return "awaitingSubmit"
	case StateRevealed:
		return "revealed"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MarshalText lets State travel as a string in JSON views.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LowTimeThreshold is the remaining time at or below which View.LowTime is set.
const LowTimeThreshold = 30

const tickInterval = time.Second

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler sets the countdown source. Without one the engine only moves
// its countdown when Tick is called.
func WithScheduler(s Scheduler) Option { return func(e *Engine) { e.scheduler = s } }

// WithObserver registers fn to receive a View after every countdown tick.
func WithObserver(fn func(View)) Option { return func(e *Engine) { e.observer = fn } }

// Engine drives one learner through one quiz under a global time budget.
// All transitions are serialized, so countdown ticks and user events never overlap.
type Engine struct {
	mu         sync.Mutex
	scheduler  Scheduler
	observer   func(View)
	onComplete func(domain.ResultRecord)

	def         domain.QuizDefinition
	state       State
	index       int
	selected    string
	hasSelected bool
	revealed    bool
	feedback    string
	score       int
	remaining   int
	stopTimer   func()
	generation  int
	closed      bool
	result      *domain.ResultRecord
}

// NewEngine returns an engine in the Loading state. onComplete receives the
// result exactly once per started session.
func NewEngine(onComplete func(domain.ResultRecord), opts ...Option) *Engine {
	e := &Engine{onComplete: onComplete, state: StateLoading}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Start begins a new session for def. Any countdown left over from a previous
// session is cancelled first.
func (e *Engine) Start(def domain.QuizDefinition) error {
	if len(def.Questions) == 0 {
		return fmt.Errorf("%w: no questions", domain.ErrContentUnavailable)
	}
	if def.DurationSeconds <= 0 {
		def.DurationSeconds = domain.DefaultDurationSeconds
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelTimerLocked()
	e.def = def
	e.index = 0
	e.score = 0
	e.clearAnswerLocked()
	e.remaining = def.DurationSeconds
	e.result = nil
	e.state = StateAwaitingSelection
	e.closed = false
	e.generation++
	if e.scheduler != nil {
		gen := e.generation
		e.stopTimer = e.scheduler.Every(tickInterval, func() { e.tick(gen, true) })
	}
	return nil
}

// SelectOption chooses option for the current question. Ignored after reveal.
func (e *Engine) SelectOption(option string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.activeLocked() || e.revealed {
		return
	}
	e.selected = option
	e.hasSelected = true
	e.state = StateAwaitingSubmit
}

// SubmitAnswer checks the selected option. Ignored when nothing is selected or
// the answer is already revealed.
func (e *Engine) SubmitAnswer() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.activeLocked() || e.revealed || !e.hasSelected {
		return
	}
	q := e.def.Questions[e.index]
	if e.selected == q.Answer {
		e.score++
		e.feedback = "Correct"
	} else {
		e.feedback = "Incorrect, correct answer was " + q.Answer
	}
	e.revealed = true
	e.state = StateRevealed
}

// Advance moves to the next question, or completes the session after the last one.
func (e *Engine) Advance() {
	e.mu.Lock()
	if !e.activeLocked() || !e.revealed {
		e.mu.Unlock()
		return
	}
	if e.index+1 < len(e.def.Questions) {
		e.index++
		e.clearAnswerLocked()
		e.state = StateAwaitingSelection
		e.mu.Unlock()
		return
	}
	record := e.completeLocked()
	e.mu.Unlock()
	e.emit(record)
}

// Tick consumes one second of the budget and completes the session when it runs out.
func (e *Engine) Tick() {
	e.tick(0, false)
}

// tick ignores ticks scheduled for an earlier session; gen 0 always applies.
// When observe is set the observer sees the post-tick view before any result is emitted.
func (e *Engine) tick(gen int, observe bool) {
	e.mu.Lock()
	if !e.activeLocked() || (gen != 0 && gen != e.generation) {
		e.mu.Unlock()
		return
	}
	if e.remaining > 0 {
		e.remaining--
	}
	var record *domain.ResultRecord
	if e.remaining == 0 {
		r := e.completeLocked()
		record = &r
	}
	var v View
	observe = observe && e.observer != nil
	if observe {
		v = e.viewLocked()
	}
	e.mu.Unlock()

	if observe {
		e.observer(v)
	}
	if record != nil {
		e.emit(*record)
	}
}

// Close tears the session down without producing a result. Later calls other
// than Start are ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTimerLocked()
	e.closed = true
	e.generation++
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Result returns the record of a completed session.
func (e *Engine) Result() (domain.ResultRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return domain.ResultRecord{}, false
	}
	return *e.result, true
}

// Definition returns the quiz the engine was started with.
func (e *Engine) Definition() domain.QuizDefinition {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.def
}

func (e *Engine) activeLocked() bool {
	return !e.closed && e.state != StateLoading && e.state != StateCompleted
}

func (e *Engine) clearAnswerLocked() {
	e.selected = ""
	e.hasSelected = false
	e.revealed = false
	e.feedback = ""
}

func (e *Engine) completeLocked() domain.ResultRecord {
	e.cancelTimerLocked()
	elapsed := e.def.DurationSeconds - e.remaining
	if elapsed < 0 {
		elapsed = 0
	}
	record := domain.ResultRecord{
		ModuleTitle: e.def.Title,
		Total:       len(e.def.Questions),
		Score:       e.score,
		ModuleID:    e.def.ModuleID,
		Subject:     e.def.Subject,
		TimeTaken:   elapsed,
	}
	e.result = &record
	e.state = StateCompleted
	return record
}

func (e *Engine) cancelTimerLocked() {
	if e.stopTimer != nil {
		e.stopTimer()
		e.stopTimer = nil
	}
}

func (e *Engine) emit(record domain.ResultRecord) {
	if e.onComplete != nil {
		e.onComplete(record)
	}
}
