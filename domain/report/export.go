package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat resolves a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	if f == FormatText {
		return ".txt"
	}
	return ".json"
}

// Export renders the report in the named format.
func Export(r *Report, format string) ([]byte, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatText:
		return []byte(Text(r)), nil
	default:
		return json.MarshalIndent(r, "", "  ")
	}
}

// Decode parses a report previously exported as JSON.
func Decode(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// Text renders the fixed-section plain-text report.
func Text(r *Report) string {
	var b strings.Builder

	res := r.NegotiationResult
	ev := r.PerformanceEvaluation

	status := "ناموفق"
	if res.DealClosed {
		status = "موفق"
	}

	b.WriteString("\nگزارش جلسه مذاکره جذب سرمایه\n")
	b.WriteString("===========================\n")
	fmt.Fprintf(&b, "تاریخ: %s\n", r.SessionInfo.Date.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "مدت زمان: %.0f ثانیه\n\n", r.SessionInfo.Duration)

	b.WriteString("نتیجه مذاکره\n")
	b.WriteString("------------\n")
	fmt.Fprintf(&b, "وضعیت: %s\n", status)
	fmt.Fprintf(&b, "سرمایه درخواستی: %s تومان\n", groupThousands(res.InvestmentRequested))
	fmt.Fprintf(&b, "سرمایه جذب شده: %s تومان\n", groupThousands(res.InvestmentSecured))
	fmt.Fprintf(&b, "سهام پیشنهادی: %d%%\n", res.EquityOffered)
	fmt.Fprintf(&b, "سهام نهایی: %d%%\n", res.EquityGiven)
	fmt.Fprintf(&b, "درصد موفقیت: %.1f%%\n\n", res.SuccessRate)

	b.WriteString("ارزیابی عملکرد\n")
	b.WriteString("--------------\n")
	fmt.Fprintf(&b, "امتیاز کل: %d\n", ev.TotalScore)
	fmt.Fprintf(&b, "درصد: %.1f%%\n", ev.Percentage)
	fmt.Fprintf(&b, "رتبه: %s\n\n", ev.Grade)

	b.WriteString("نقاط قوت:\n")
	b.WriteString(bullets(ev.Strengths))
	b.WriteString("\n\nنقاط ضعف:\n")
	b.WriteString(bullets(ev.Weaknesses))
	b.WriteString("\n\nتوصیه‌ها:\n")
	b.WriteString(bullets(ev.Recommendations))
	b.WriteString("\n\nرضایت عوامل\n")
	b.WriteString("------------\n")

	for _, role := range negotiation.AllRoles() {
		fb, ok := r.AgentsFeedback[role]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %d%% (%s)\n", role, fb.Satisfaction, fb.FinalState)
	}

	return b.String()
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
