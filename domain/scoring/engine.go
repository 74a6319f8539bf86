package scoring

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

var (
	technicalTerms = []string{"roi", "cac", "ltv", "بازار", "رشد", "هزینه", "درآمد"}
	negativeTerms  = []string{"ولی", "اما", "نه", "نمی‌توانم", "مشکل"}
)

// Feedback texts.
const (
	FeedbackTechnical = "استفاده خوب از اصطلاحات فنی و مالی"
	FeedbackNegative  = "سعی کنید کمتر از کلمات منفی استفاده کنید"
	FeedbackGeneric   = "پاسخ‌های خود را با داده‌های بیشتری پشتیبانی کنید"
)

// Feedback is the evaluator's note on one turn.
type Feedback struct {
	Timestamp   time.Time `json:"timestamp"`
	UserMessage string    `json:"user_message"`
	Feedback    string    `json:"feedback"`
	Metrics     Metrics   `json:"metrics"`

	// Scores is reserved for per-turn scores and is always empty.
	Scores map[string]int `json:"scores"`
}

// Engine accumulates metrics across a session.
type Engine struct {
	metrics Metrics
	history []Feedback
	clamp   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClamp caps the final percentage at 100.
func WithClamp(clamp bool) Option {
	return func(e *Engine) {
		e.clamp = clamp
	}
}

// NewEngine creates an engine with zeroed metrics.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{history: make([]Feedback, 0)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ScoreTurn updates the metrics from one user message and records feedback.
// Counterpart replies are accepted for context but do not affect the score.
func (e *Engine) ScoreTurn(userMessage string, _ map[negotiation.Role]string, at time.Time) Feedback {
	lower := strings.ToLower(userMessage)

	technical := countTerms(lower, technicalTerms)
	e.metrics.TechnicalKnowledge += technical

	if words := len(strings.Fields(userMessage)); words > 5 && words < 50 {
		e.metrics.CommunicationSkills++
	}

	negative := countTerms(lower, negativeTerms)
	if negative < 2 {
		e.metrics.EmotionalControl++
	}

	text := FeedbackGeneric
	switch {
	case technical > 2:
		text = FeedbackTechnical
	case negative > 2:
		text = FeedbackNegative
	}

	fb := Feedback{
		Timestamp:   at,
		UserMessage: userMessage,
		Feedback:    text,
		Metrics:     e.metrics,
		Scores:      map[string]int{},
	}
	e.history = append(e.history, fb)
	return fb
}

// countTerms returns how many distinct terms occur in s.
func countTerms(s string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(s, term) {
			n++
		}
	}
	return n
}

// Metrics returns the current metric values.
func (e *Engine) Metrics() Metrics {
	return e.metrics
}

// History returns a copy of the feedback recorded so far.
func (e *Engine) History() []Feedback {
	out := make([]Feedback, len(e.history))
	copy(out, e.history)
	return out
}

// Clamped reports whether the final percentage is capped.
func (e *Engine) Clamped() bool {
	return e.clamp
}

// Clone returns an independent copy of the engine.
func (e *Engine) Clone() *Engine {
	return &Engine{
		metrics: e.metrics,
		history: e.History(),
		clamp:   e.clamp,
	}
}
