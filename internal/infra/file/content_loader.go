package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"portal-quiz-service/internal/domain"
)

// ContentLoader reads quiz content files laid out as
// <dir>/practice_mcqs/<subject>/questions.json, or <dir>/questions.json
// when no subject is given.
type ContentLoader struct {
	dir string
}

func NewContentLoader(dir string) *ContentLoader {
	return &ContentLoader{dir: dir}
}

func (l *ContentLoader) LoadContent(ctx context.Context, subject string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.path(subject)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrContentNotFound, subject)
	}
	if err != nil {
		return nil, fmt.Errorf("read quiz content: %w", err)
	}
	return data, nil
}

func (l *ContentLoader) path(subject string) (string, error) {
	if subject == "" {
		return filepath.Join(l.dir, "questions.json"), nil
	}
	if strings.ContainsAny(subject, `/\`) || subject == "." || subject == ".." {
		return "", fmt.Errorf("%w: invalid subject %q", domain.ErrContentNotFound, subject)
	}
	return filepath.Join(l.dir, "practice_mcqs", subject, "questions.json"), nil
}
