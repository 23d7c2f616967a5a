package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"portal-quiz-service/internal/domain"
)

// DefaultTitle is used for a questions container that carries no title.
const DefaultTitle = "Quiz"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(answerInOptions, domain.Question{})
	return v
}

// answerInOptions enforces that the answer value-equals one of the options.
func answerInOptions(sl validator.StructLevel) {
	q := sl.Current().Interface().(domain.Question)
	for _, opt := range q.Options {
		if opt == q.Answer {
			return
		}
	}
	sl.ReportError(q.Answer, "Answer", "answer", "answerinoptions", "")
}

type moduleContent struct {
	ID        json.RawMessage `json:"id"`
	Title     string          `json:"title"`
	Duration  json.RawMessage `json:"duration"`
	Questions json.RawMessage `json:"questions"`
}

type containerContent struct {
	Modules   json.RawMessage `json:"modules"`
	Title     string          `json:"title"`
	Duration  json.RawMessage `json:"duration"`
	Questions json.RawMessage `json:"questions"`
}

// Normalize resolves raw quiz content into a QuizDefinition for moduleID.
// Accepted shapes, in order of precedence: {"modules": [...]}, a bare list of
// questions, {"questions": [...]}.
func Normalize(data []byte, moduleID int) (domain.QuizDefinition, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return domain.QuizDefinition{}, unavailable("empty content")
	}

	var (
		def domain.QuizDefinition
		err error
	)
	if trimmed[0] == '[' {
		def, err = fromList(trimmed, moduleID)
	} else {
		def, err = fromContainer(trimmed, moduleID)
	}
	if err != nil {
		return domain.QuizDefinition{}, err
	}

	if len(def.Questions) == 0 {
		return domain.QuizDefinition{}, unavailable("no questions")
	}
	for i, q := range def.Questions {
		if err := validate.Struct(q); err != nil {
			return domain.QuizDefinition{}, unavailable(fmt.Sprintf("question %d: %v", i+1, err))
		}
	}
	return def, nil
}

func fromContainer(data []byte, moduleID int) (domain.QuizDefinition, error) {
	var c containerContent
	if err := json.Unmarshal(data, &c); err != nil {
		return domain.QuizDefinition{}, unavailable(err.Error())
	}

	if isArray(c.Modules) {
		var modules []moduleContent
		if err := json.Unmarshal(c.Modules, &modules); err != nil {
			return domain.QuizDefinition{}, unavailable(err.Error())
		}
		if len(modules) == 0 {
			return domain.QuizDefinition{}, unavailable("empty modules list")
		}
		chosen := modules[0]
		for _, m := range modules {
			if matchesModule(m.ID, moduleID) {
				chosen = m
				break
			}
		}
		questions, err := decodeQuestions(chosen.Questions)
		if err != nil {
			return domain.QuizDefinition{}, err
		}
		return domain.QuizDefinition{
			Title:           chosen.Title,
			ModuleID:        moduleID,
			DurationSeconds: durationSeconds(chosen.Duration),
			Questions:       questions,
		}, nil
	}

	if isNull(c.Questions) {
		return domain.QuizDefinition{}, unavailable("no modules, list or questions found")
	}
	questions, err := decodeQuestions(c.Questions)
	if err != nil {
		return domain.QuizDefinition{}, err
	}
	title := c.Title
	if title == "" {
		title = DefaultTitle
	}
	return domain.QuizDefinition{
		Title:           title,
		ModuleID:        moduleID,
		DurationSeconds: durationSeconds(c.Duration),
		Questions:       questions,
	}, nil
}

// matchesModule reports whether raw is a JSON integer equal to moduleID.
// Strings, fractions and missing ids never match.
func matchesModule(raw json.RawMessage, moduleID int) bool {
	id, err := strconv.Atoi(string(bytes.TrimSpace(raw)))
	return err == nil && id == moduleID
}

func fromList(data []byte, moduleID int) (domain.QuizDefinition, error) {
	questions, err := decodeQuestions(data)
	if err != nil {
		return domain.QuizDefinition{}, err
	}
	return domain.QuizDefinition{
		ModuleID:        moduleID,
		DurationSeconds: domain.DefaultDurationSeconds,
		Questions:       questions,
	}, nil
}

func decodeQuestions(raw json.RawMessage) ([]domain.Question, error) {
	if !isArray(raw) {
		return nil, unavailable("questions is not a list")
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, unavailable(err.Error())
	}
	return questions, nil
}

// durationSeconds accepts numbers or numeric strings; anything else, or a
// non-positive value, falls back to the default budget.
func durationSeconds(raw json.RawMessage) int {
	if isNull(raw) {
		return domain.DefaultDurationSeconds
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return domain.DefaultDurationSeconds
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.DefaultDurationSeconds
		}
		n = parsed
	}
	if int(n) <= 0 {
		return domain.DefaultDurationSeconds
	}
	return int(n)
}

func isArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func unavailable(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrContentUnavailable, reason)
}
