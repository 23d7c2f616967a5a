package domain

import (
	"math"
	"time"
)

// DefaultDurationSeconds is the time budget used when content does not supply a positive one.
const DefaultDurationSeconds = 600

// Question models a single-answer MCQ question as it appears in content files.
type Question struct {
	Prompt      string   `json:"question" validate:"required"`
	Options     []string `json:"options" validate:"required,min=1,unique,dive,required"`
	Answer      string   `json:"answer" validate:"required"`
	Explanation string   `json:"explanation,omitempty"`
}

// QuizDefinition is the canonical form of a quiz after normalization.
type QuizDefinition struct {
	Title           string     `json:"title"`
	ModuleID        int        `json:"moduleId"`
	Subject         string     `json:"subject"`
	DurationSeconds int        `json:"duration"`
	Questions       []Question `json:"questions"`
}

// ResultRecord is emitted once per completed session.
type ResultRecord struct {
	ModuleTitle string `json:"moduleTitle"`
	Total       int    `json:"total"`
	Score       int    `json:"score"`
	ModuleID    int    `json:"moduleId"`
	Subject     string `json:"subject"`
	TimeTaken   int    `json:"timeTaken"`
}

// Percentage returns the rounded share of correct answers.
func (r ResultRecord) Percentage() int {
	if r.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(r.Score) / float64(r.Total) * 100))
}

// StoredResult is a persisted result tied to a learner.
type StoredResult struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"sessionId"`
	UserID      string       `json:"userId"`
	Result      ResultRecord `json:"result"`
	CompletedAt time.Time    `json:"completedAt"`
}
