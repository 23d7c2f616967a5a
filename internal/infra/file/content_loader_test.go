package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"portal-quiz-service/internal/domain"
)

func TestLoadContentBySubject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "practice_mcqs", "safety", "questions.json"), `{"questions": []}`)
	writeFile(t, filepath.Join(dir, "questions.json"), `[]`)
	loader := NewContentLoader(dir)

	data, err := loader.LoadContent(context.Background(), "safety")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `{"questions": []}` {
		t.Fatalf("unexpected content %s", data)
	}

	data, err = loader.LoadContent(context.Background(), "")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if string(data) != `[]` {
		t.Fatalf("unexpected default content %s", data)
	}
}

func TestLoadContentMissing(t *testing.T) {
	loader := NewContentLoader(t.TempDir())
	for _, subject := range []string{"absent", "../etc", ".."} {
		if _, err := loader.LoadContent(context.Background(), subject); !errors.Is(err, domain.ErrContentNotFound) {
			t.Fatalf("%s: expected not found, got %v", subject, err)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
