package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"portal-quiz-service/internal/domain"
)

// resultRow maps quiz_results.
type resultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	ID          string    `bun:"id,pk"`
	SessionID   string    `bun:"session_id"`
	UserID      string    `bun:"user_id"`
	ModuleID    int       `bun:"module_id"`
	Subject     string    `bun:"subject"`
	ModuleTitle string    `bun:"module_title"`
	Total       int       `bun:"total"`
	Score       int       `bun:"score"`
	TimeTaken   int       `bun:"time_taken"`
	CompletedAt time.Time `bun:"completed_at"`
}

// ResultStore persists completed results with bun.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.StoredResult) error {
	row := resultRow{
		ID:          result.ID,
		SessionID:   result.SessionID,
		UserID:      result.UserID,
		ModuleID:    result.Result.ModuleID,
		Subject:     result.Result.Subject,
		ModuleTitle: result.Result.ModuleTitle,
		Total:       result.Result.Total,
		Score:       result.Result.Score,
		TimeTaken:   result.Result.TimeTaken,
		CompletedAt: result.CompletedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}
	return nil
}

// ListResults returns a learner's results, most recent first.
func (s *ResultStore) ListResults(ctx context.Context, userID string) ([]domain.StoredResult, error) {
	var rows []resultRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}

	out := make([]domain.StoredResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.StoredResult{
			ID:        row.ID,
			SessionID: row.SessionID,
			UserID:    row.UserID,
			Result: domain.ResultRecord{
				ModuleTitle: row.ModuleTitle,
				Total:       row.Total,
				Score:       row.Score,
				ModuleID:    row.ModuleID,
				Subject:     row.Subject,
				TimeTaken:   row.TimeTaken,
			},
			CompletedAt: row.CompletedAt,
		})
	}
	return out, nil
}
