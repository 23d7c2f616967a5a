package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"portal-quiz-service/internal/domain"
	"portal-quiz-service/internal/quiz"
)

// SessionRepository abstracts how live quiz sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// ContentRepository loads raw quiz content for a subject (from cache/backing store).
type ContentRepository interface {
	GetContent(ctx context.Context, subject string) ([]byte, error)
}

// ResultRepository persists completed results.
type ResultRepository interface {
	SaveResult(ctx context.Context, result domain.StoredResult) error
	ListResults(ctx context.Context, userID string) ([]domain.StoredResult, error)
}

// QuizService contains the quiz-taking use cases.
type QuizService struct {
	sessions  SessionRepository
	contents  ContentRepository
	results   ResultRepository
	scheduler quiz.Scheduler
	now       func() time.Time
}

// NewQuizService wires the service. A nil scheduler leaves countdowns to explicit ticks.
func NewQuizService(store SessionRepository, contents ContentRepository, results ResultRepository, scheduler quiz.Scheduler) *QuizService {
	return &QuizService{
		sessions:  store,
		contents:  contents,
		results:   results,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// Start loads the quiz for subject/moduleID and begins a new session for userID.
func (s *QuizService) Start(ctx context.Context, userID, subject string, moduleID int) (string, quiz.View, error) {
	raw, err := s.contents.GetContent(ctx, subject)
	if err != nil {
		return "", quiz.View{}, err
	}
	def, err := quiz.Normalize(raw, moduleID)
	if err != nil {
		return "", quiz.View{}, err
	}
	def.Subject = subject

	session := newSession(uuid.NewString(), userID, subject, moduleID)
	opts := []quiz.Option{quiz.WithObserver(session.publishTick)}
	if s.scheduler != nil {
		opts = append(opts, quiz.WithScheduler(s.scheduler))
	}
	session.engine = quiz.NewEngine(func(r domain.ResultRecord) { s.complete(session, r) }, opts...)

	if err := session.engine.Start(def); err != nil {
		return "", quiz.View{}, err
	}
	s.sessions.Put(session)
	return session.id, session.engine.View(), nil
}

// Select records the learner's current choice.
func (s *QuizService) Select(_ context.Context, sessionID, option string) (quiz.View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return quiz.View{}, err
	}
	session.engine.SelectOption(option)
	return session.engine.View(), nil
}

// Submit checks the selected option of the current question.
func (s *QuizService) Submit(_ context.Context, sessionID string) (quiz.View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return quiz.View{}, err
	}
	session.engine.SubmitAnswer()
	return session.engine.View(), nil
}

// Advance moves to the next question or finishes the quiz.
func (s *QuizService) Advance(_ context.Context, sessionID string) (quiz.View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return quiz.View{}, err
	}
	session.engine.Advance()
	return session.engine.View(), nil
}

// Snapshot returns the current view of a session.
func (s *QuizService) Snapshot(_ context.Context, sessionID string) (quiz.View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return quiz.View{}, err
	}
	return session.engine.View(), nil
}

// Result returns the result of a completed session.
func (s *QuizService) Result(_ context.Context, sessionID string) (domain.ResultRecord, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.ResultRecord{}, err
	}
	result, ok := session.engine.Result()
	if !ok {
		return domain.ResultRecord{}, domain.ErrResultNotReady
	}
	return result, nil
}

// Retry tears the session down and starts the same quiz again for the same learner.
func (s *QuizService) Retry(ctx context.Context, sessionID string) (string, quiz.View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return "", quiz.View{}, err
	}
	s.Abandon(ctx, sessionID)
	return s.Start(ctx, session.userID, session.subject, session.moduleID)
}

// Subscribe returns a channel that receives countdown ticks and the final result.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan Event, func(), error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Abandon cancels the session's countdown and forgets it. Unknown IDs are ignored.
func (s *QuizService) Abandon(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	if session.started() {
		session.engine.Close()
	}
	session.closeSubscribers()
	s.sessions.Delete(sessionID)
}

// History lists the stored results of a learner.
func (s *QuizService) History(ctx context.Context, userID string) ([]domain.StoredResult, error) {
	return s.results.ListResults(ctx, userID)
}

// session looks up a live session; entries without an engine count as missing.
func (s *QuizService) session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok || !session.started() {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *QuizService) complete(session *Session, result domain.ResultRecord) {
	stored := domain.StoredResult{
		ID:          uuid.NewString(),
		SessionID:   session.id,
		UserID:      session.userID,
		Result:      result,
		CompletedAt: s.now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.results.SaveResult(ctx, stored); err != nil {
		log.Printf("save result for session %s: %v", session.id, err)
	}
	session.publish(Event{Type: EventResult, Result: &result})
}
