package scoring

// MaxPossibleScore is five metrics at twenty points each. Metrics are not
// capped, so totals can exceed it.
const MaxPossibleScore = 100

// Evaluation is the evaluator's end-of-session verdict.
type Evaluation struct {
	TotalScore      int        `json:"total_score"`
	Percentage      float64    `json:"percentage"`
	Grade           string     `json:"grade"`
	Metrics         Metrics    `json:"metrics"`
	Strengths       []string   `json:"strengths"`
	Weaknesses      []string   `json:"weaknesses"`
	Recommendations []string   `json:"recommendations"`
	FeedbackHistory []Feedback `json:"feedback_history"`
}

var strengthText = map[MetricName]string{
	TechnicalKnowledge:      "دانش فنی و کسب‌وکاری قوی",
	CommunicationSkills:     "مهارت‌های ارتباطی عالی",
	NegotiationIntelligence: "هوش مذاکره بالا",
	EmotionalControl:        "کنترل احساسات مناسب",
	Creativity:              "خلاقیت در ارائه راه‌حل‌ها",
}

var weaknessText = map[MetricName]string{
	TechnicalKnowledge:      "نیاز به تقویت دانش فنی و مالی",
	CommunicationSkills:     "بهبود مهارت‌های ارتباطی",
	NegotiationIntelligence: "تقویت تکنیک‌های مذاکره",
	EmotionalControl:        "مدیریت بهتر احساسات",
	Creativity:              "افزایش خلاقیت در پاسخ‌ها",
}

// Recommendation texts.
const (
	RecommendFinancialModels = "مطالعه بیشتر در زمینه مدل‌های مالی استارتاپ‌ها"
	RecommendShortPitches    = "تمرین ارائه‌های کوتاه و مختصر"
	RecommendStress          = "تمرین تکنیک‌های مدیریت استرس"
	RecommendScenarios       = "تمرین با سناریوهای مختلف برای افزایش اعتماد به نفس"
	RecommendCaseStudies     = "مطالعه موردی مذاکرات موفق در صنعت"
)

// StrengthText returns the strength line for a metric.
func StrengthText(name MetricName) string { return strengthText[name] }

// WeaknessText returns the weakness line for a metric.
func WeaknessText(name MetricName) string { return weaknessText[name] }

// Evaluate grades the session so far.
func (e *Engine) Evaluate() Evaluation {
	m := e.metrics
	total := m.Total()
	pct := float64(total) / MaxPossibleScore * 100
	if e.clamp && pct > 100 {
		pct = 100
	}

	return Evaluation{
		TotalScore:      total,
		Percentage:      pct,
		Grade:           Grade(pct),
		Metrics:         m,
		Strengths:       strengths(m),
		Weaknesses:      weaknesses(m),
		Recommendations: recommendations(m),
		FeedbackHistory: e.History(),
	}
}

// Grade maps a percentage to a letter grade.
func Grade(pct float64) string {
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 85:
		return "A"
	case pct >= 80:
		return "B+"
	case pct >= 75:
		return "B"
	case pct >= 70:
		return "C+"
	case pct >= 65:
		return "C"
	default:
		return "D"
	}
}

func strengths(m Metrics) []string {
	out := []string{}
	for _, name := range MetricNames() {
		if m.Get(name) > 15 {
			out = append(out, strengthText[name])
		}
	}
	return out
}

func weaknesses(m Metrics) []string {
	out := []string{}
	for _, name := range MetricNames() {
		if m.Get(name) < 10 {
			out = append(out, weaknessText[name])
		}
	}
	return out
}

func recommendations(m Metrics) []string {
	var out []string
	if m.TechnicalKnowledge < 10 {
		out = append(out, RecommendFinancialModels)
	}
	if m.CommunicationSkills < 10 {
		out = append(out, RecommendShortPitches)
	}
	if m.EmotionalControl < 10 {
		out = append(out, RecommendStress)
	}
	return append(out, RecommendScenarios, RecommendCaseStudies)
}
