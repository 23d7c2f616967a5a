package quiz

import "fmt"

// View is a read-only snapshot of an engine for presentation.
type View struct {
	State            State    `json:"state"`
	Title            string   `json:"title"`
	QuestionNumber   int      `json:"questionNumber"`
	TotalQuestions   int      `json:"totalQuestions"`
	Prompt           string   `json:"prompt"`
	Options          []string `json:"options"`
	Selected         string   `json:"selected,omitempty"`
	Revealed         bool     `json:"revealed"`
	Feedback         string   `json:"feedback,omitempty"`
	Explanation      string   `json:"explanation,omitempty"`
	Score            int      `json:"score"`
	RemainingSeconds int      `json:"remainingSeconds"`
	Progress         float64  `json:"progress"`
	Timer            string   `json:"timer"`
	LowTime          bool     `json:"lowTime"`
}

// View returns the current snapshot. A Loading engine yields only its state.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Engine) viewLocked() View {
	v := View{State: e.state}
	if e.state == StateLoading {
		return v
	}

	total := len(e.def.Questions)
	q := e.def.Questions[e.index]
	v.Title = e.def.Title
	v.QuestionNumber = e.index + 1
	v.TotalQuestions = total
	v.Prompt = q.Prompt
	v.Options = append([]string(nil), q.Options...)
	v.Selected = e.selected
	v.Revealed = e.revealed
	v.Feedback = e.feedback
	if e.revealed {
		v.Explanation = q.Explanation
	}
	v.Score = e.score
	v.RemainingSeconds = e.remaining
	v.Progress = float64(e.index+1) / float64(total)
	v.Timer = FormatClock(e.remaining)
	v.LowTime = e.remaining <= LowTimeThreshold
	return v
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
