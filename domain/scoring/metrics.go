// Package scoring grades the founder's side of the conversation. It keeps
// five running metrics, attaches feedback to every turn and turns the totals
// into a final grade.
package scoring

// MetricName identifies one evaluation metric.
type MetricName string

const (
	TechnicalKnowledge      MetricName = "technical_knowledge"
	CommunicationSkills     MetricName = "communication_skills"
	NegotiationIntelligence MetricName = "negotiation_intelligence"
	EmotionalControl        MetricName = "emotional_control"
	Creativity              MetricName = "creativity"
)

// MetricNames returns the metrics in report order.
func MetricNames() []MetricName {
	return []MetricName{
		TechnicalKnowledge,
		CommunicationSkills,
		NegotiationIntelligence,
		EmotionalControl,
		Creativity,
	}
}

// Metrics are the evaluator's running counters. They never decrease.
//
// NegotiationIntelligence and Creativity have no rule that raises them yet.
type Metrics struct {
	TechnicalKnowledge      int `json:"technical_knowledge"`
	CommunicationSkills     int `json:"communication_skills"`
	NegotiationIntelligence int `json:"negotiation_intelligence"`
	EmotionalControl        int `json:"emotional_control"`
	Creativity              int `json:"creativity"`
}

// Get returns the value of a named metric.
func (m Metrics) Get(name MetricName) int {
	switch name {
	case TechnicalKnowledge:
		return m.TechnicalKnowledge
	case CommunicationSkills:
		return m.CommunicationSkills
	case NegotiationIntelligence:
		return m.NegotiationIntelligence
	case EmotionalControl:
		return m.EmotionalControl
	case Creativity:
		return m.Creativity
	default:
		return 0
	}
}

// Total returns the sum of all metrics.
func (m Metrics) Total() int {
	return m.TechnicalKnowledge + m.CommunicationSkills + m.NegotiationIntelligence + m.EmotionalControl + m.Creativity
}
