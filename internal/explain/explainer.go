// Package explain turns agent decisions into human-readable
// justifications. It is a collaborator of the backend, not of the
// dispatcher: an explainer failure never fails the action it describes.
package explain

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelai/sentinel-agents/models"
)

// Explainer produces a human-readable explanation for one decision.
type Explainer interface {
	ExplainDecision(ctx context.Context, agentType, action string, params map[string]interface{}, result *models.ActionResult) (string, error)
}

// Attribution is one feature's contribution to a decision.
type Attribution struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// Explanation is a cached, fully-expanded explanation.
type Explanation struct {
	ID           string        `json:"id"`
	AgentType    string        `json:"agent_type"`
	Action       string        `json:"action"`
	Text         string        `json:"text"`
	Attributions []Attribution `json:"attributions"`
	CreatedAt    time.Time     `json:"created_at"`
}

// DecisionStep is one entry in a decision path.
type DecisionStep struct {
	Step        int     `json:"step"`
	Feature     string  `json:"feature"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
}

// TemplateExplainer phrases decisions from per-agent feature tables and
// deterministic attribution weights. It keeps an in-memory cache keyed by
// explanation id so detailed breakdowns can be fetched later.
type TemplateExplainer struct {
	mu    sync.RWMutex
	cache map[string]*Explanation
}

func NewTemplateExplainer() *TemplateExplainer {
	return &TemplateExplainer{cache: make(map[string]*Explanation)}
}

func (e *TemplateExplainer) ExplainDecision(ctx context.Context, agentType, action string, params map[string]interface{}, result *models.ActionResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if result == nil {
		return "", fmt.Errorf("no result to explain")
	}
	names := FeatureNames(agentType)
	if len(names) == 0 {
		return "", fmt.Errorf("unknown agent type %q", agentType)
	}

	attributions := attribute(names, agentType, action, result)
	text := render(agentType, action, attributions, result)

	exp := &Explanation{
		ID:           uuid.New().String(),
		AgentType:    agentType,
		Action:       action,
		Text:         text,
		Attributions: attributions,
		CreatedAt:    time.Now(),
	}

	e.mu.Lock()
	e.cache[exp.ID] = exp
	e.mu.Unlock()

	return text, nil
}

// Detailed returns the cached explanation with normalized feature
// importances and a decision path, or an error if the id is unknown.
func (e *TemplateExplainer) Detailed(id string) (*Explanation, map[string]float64, []DecisionStep, error) {
	e.mu.RLock()
	exp, ok := e.cache[id]
	e.mu.RUnlock()
	if !ok {
		return nil, nil, nil, fmt.Errorf("explanation %s not found", id)
	}

	total := 0.0
	for _, a := range exp.Attributions {
		total += math.Abs(a.Weight)
	}
	importance := make(map[string]float64, len(exp.Attributions))
	for _, a := range exp.Attributions {
		if total > 0 {
			importance[a.Feature] = math.Abs(a.Weight) / total
		} else {
			importance[a.Feature] = 0
		}
	}

	top := topAttributions(exp.Attributions, 5)
	path := make([]DecisionStep, len(top))
	for i, a := range top {
		direction := "positively"
		if a.Weight < 0 {
			direction = "negatively"
		}
		path[i] = DecisionStep{
			Step:        i + 1,
			Feature:     a.Feature,
			Impact:      a.Weight,
			Description: fmt.Sprintf("Feature %q contributed %s to the decision", a.Feature, direction),
		}
	}

	return exp, importance, path, nil
}

// attribute assigns each feature a deterministic weight in [-1, 1] from a
// hash of (agent, action, feature), then overrides the features the result
// actually reports so the explanation tracks the real numbers.
func attribute(names []string, agentType, action string, result *models.ActionResult) []Attribution {
	attributions := make([]Attribution, len(names))
	for i, name := range names {
		h := fnv.New64a()
		h.Write([]byte(agentType))
		h.Write([]byte{0})
		h.Write([]byte(action))
		h.Write([]byte{0})
		h.Write([]byte(name))
		// Map the hash onto [-0.5, 0.5].
		attributions[i] = Attribution{
			Feature: name,
			Weight:  float64(int64(h.Sum64())) / math.MaxInt64 * 0.5,
		}
	}

	for i, a := range attributions {
		switch a.Feature {
		case "risk_score":
			if v, ok := result.Payload["risk_score"].(float64); ok {
				attributions[i].Weight = v
			}
		case "compliance_score":
			if v, ok := result.Payload["compliance_score"].(float64); ok {
				attributions[i].Weight = v
			}
		case "news_sentiment":
			if v, ok := result.Payload["market_sentiment"].(float64); ok {
				attributions[i].Weight = v
			}
		case "prediction_confidence", "liquidity_ratio":
			attributions[i].Weight = result.Confidence
		}
	}
	return attributions
}

func topAttributions(attributions []Attribution, n int) []Attribution {
	sorted := append([]Attribution(nil), attributions...)
	sort.Slice(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Weight) > math.Abs(sorted[j].Weight)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func render(agentType, action string, attributions []Attribution, result *models.ActionResult) string {
	top := topAttributions(attributions, 3)

	var b strings.Builder
	switch agentType {
	case "trader":
		fmt.Fprintf(&b, "Trader decision: %s\n", action)
		fmt.Fprintf(&b, "Confidence level: %.1f%%\n", result.Confidence*100)
		b.WriteString("Key decision factors:\n")
		for _, a := range top {
			impact := "positively"
			if a.Weight < 0 {
				impact = "negatively"
			}
			fmt.Fprintf(&b, "- %s %s influenced this decision (impact: %.3f)\n", title(a.Feature), impact, math.Abs(a.Weight))
		}
	case "compliance":
		fmt.Fprintf(&b, "Compliance decision: %s\n", action)
		fmt.Fprintf(&b, "Compliance score: %.1f%%\n", result.Confidence*100)
		b.WriteString("Regulatory analysis:\n")
		for _, a := range top {
			level := "increased"
			if a.Weight < 0 {
				level = "decreased"
			}
			fmt.Fprintf(&b, "- %s %s compliance risk (score: %.3f)\n", title(a.Feature), level, math.Abs(a.Weight))
		}
	case "supervisor":
		fmt.Fprintf(&b, "Supervisor decision: %s\n", action)
		fmt.Fprintf(&b, "Oversight confidence: %.1f%%\n", result.Confidence*100)
		b.WriteString("System monitoring results:\n")
		for _, a := range top {
			status := "optimal"
			if a.Weight < 0 {
				status = "requires attention"
			}
			fmt.Fprintf(&b, "- %s is %s (score: %.3f)\n", title(a.Feature), status, math.Abs(a.Weight))
		}
	case "advisor":
		fmt.Fprintf(&b, "Advisor prediction: %s\n", action)
		fmt.Fprintf(&b, "Prediction confidence: %.1f%%\n", result.Confidence*100)
		b.WriteString("Market analysis factors:\n")
		for _, a := range top {
			trend := "bullish"
			if a.Weight < 0 {
				trend = "bearish"
			}
			fmt.Fprintf(&b, "- %s indicates %s sentiment (strength: %.3f)\n", title(a.Feature), trend, math.Abs(a.Weight))
		}
	default:
		fmt.Fprintf(&b, "Decision made by %s agent for action %q with %.1f%% confidence.", agentType, action, result.Confidence*100)
	}
	return b.String()
}

func title(feature string) string {
	words := strings.Split(feature, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
