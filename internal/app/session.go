package app

import (
	"sync"
	"time"

	"portal-quiz-service/internal/domain"
	"portal-quiz-service/internal/quiz"
)

// EventType names what a subscriber is being told about.
type EventType string

const (
	EventTick   EventType = "tick"
	EventResult EventType = "result"
)

// Event is pushed to session subscribers.
type Event struct {
	Type   EventType            `json:"type"`
	View   *quiz.View           `json:"view,omitempty"`
	Result *domain.ResultRecord `json:"result,omitempty"`
}

// Session is one learner's live quiz attempt.
type Session struct {
	id       string
	userID   string
	subject  string
	moduleID int
	engine   *quiz.Engine

	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

// NewSession returns a session that has not been started. It only carries
// identity for SessionRepository implementations; QuizService reports such a
// session as not found until it owns an engine for it.
func NewSession(id, userID, subject string, moduleID int) *Session {
	return newSession(id, userID, subject, moduleID)
}

func newSession(id, userID, subject string, moduleID int) *Session {
	return &Session{
		id:          id,
		userID:      userID,
		subject:     subject,
		moduleID:    moduleID,
		subscribers: make(map[chan Event]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UserID returns the learner taking the quiz.
func (s *Session) UserID() string { return s.userID }

// Duration is the time budget of the running quiz, zero before it starts.
func (s *Session) Duration() time.Duration {
	if s.engine == nil {
		return 0
	}
	return time.Duration(s.engine.Definition().DurationSeconds) * time.Second
}

func (s *Session) started() bool { return s.engine != nil }

func (s *Session) publishTick(v quiz.View) {
	s.publish(Event{Type: EventTick, View: &v})
}

func (s *Session) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)
	if !s.started() {
		close(ch)
		return ch, func() {}
	}
	initial := s.engine.View()
	ch <- Event{Type: EventTick, View: &initial}

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// slow subscriber: drop the oldest event so the latest one lands
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (s *Session) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}
