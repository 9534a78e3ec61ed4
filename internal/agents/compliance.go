package agents

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelai/sentinel-agents/internal/agent"
	"github.com/sentinelai/sentinel-agents/models"
)

// Compliance screens transactions, runs sanctions checks, and produces
// audit and regulatory reports. Risk inputs come from the caller; the
// agent only combines them.
type Compliance struct {
	*agent.Base
}

func NewCompliance() *Compliance {
	c := &Compliance{Base: agent.NewBase("compliance")}

	c.Register("check_transaction", c.checkTransaction)
	c.Register("sanctions_screening", c.sanctionsScreening)
	c.Register("audit_trail", c.auditTrail)
	c.Register("generate_report", c.generateReport)

	return c
}

func (c *Compliance) checkTransaction(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	amount := floatOr(params["amount"], -1)
	if amount < 0 {
		return nil, fmt.Errorf("missing parameter: amount")
	}

	senderRisk := clamp01(floatOr(params["sender_risk_score"], 0))
	receiverRisk := clamp01(floatOr(params["receiver_risk_score"], 0))
	jurisdictionRisk := clamp01(floatOr(params["jurisdiction_risk"], 0))

	// Amount contributes on a log scale so a 10x larger transfer does not
	// drown out the counterparty scores.
	amountRisk := 0.0
	if amount > 0 {
		amountRisk = clamp01(math.Log10(amount) / 8)
	}

	score := 0.35*senderRisk + 0.35*receiverRisk + 0.2*jurisdictionRisk + 0.1*amountRisk

	var flags []string
	if amount >= 10000 {
		flags = append(flags, "large_transaction")
	}
	if senderRisk > 0.7 || receiverRisk > 0.7 {
		flags = append(flags, "high_risk_counterparty")
	}
	if jurisdictionRisk > 0.5 {
		flags = append(flags, "high_risk_jurisdiction")
	}

	approved := score < 0.6

	return &models.ActionResult{
		Success:    true,
		Confidence: 1 - score/2,
		Payload: map[string]interface{}{
			"approved":         approved,
			"compliance_score": 1 - score,
			"risk_score":       score,
			"flags":            flags,
			"review_required":  !approved,
		},
	}, nil
}

func (c *Compliance) sanctionsScreening(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	entity, _ := params["entity"].(string)
	if strings.TrimSpace(entity) == "" {
		return nil, fmt.Errorf("missing parameter: entity")
	}

	lists := stringSlice(params["lists"])
	if len(lists) == 0 {
		lists = []string{"OFAC", "EU", "UN"}
	}

	// Deterministic placeholder screen: the entity hash stands in for a
	// real list lookup so results are stable across calls.
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(entity)))
	hit := h.Sum32()%997 == 0

	var matches []string
	if hit {
		matches = append(matches, lists[0])
	}

	return &models.ActionResult{
		Success:    true,
		Confidence: 0.92,
		Payload: map[string]interface{}{
			"entity":         entity,
			"screened_lists": lists,
			"matches":        matches,
			"clear":          len(matches) == 0,
		},
	}, nil
}

func (c *Compliance) auditTrail(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	periodDays := intOr(params["period_days"], 30)
	if periodDays <= 0 {
		return nil, fmt.Errorf("invalid parameter: period_days must be positive")
	}

	m := c.Metrics()
	return &models.ActionResult{
		Success:    true,
		Confidence: 1.0,
		Payload: map[string]interface{}{
			"audit_id":          uuid.New().String(),
			"period_days":       periodDays,
			"checks_performed":  m.TotalRequests,
			"checks_passed":     m.SuccessfulRequests,
			"generated_at":      time.Now().UTC().Format(time.RFC3339),
			"retention_applies": periodDays >= 30,
		},
	}, nil
}

func (c *Compliance) generateReport(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	framework, _ := params["framework"].(string)
	if framework == "" {
		framework = "MiCA"
	}
	switch framework {
	case "MiCA", "SEC", "FATF":
	default:
		return nil, fmt.Errorf("invalid parameter: unsupported framework %q", framework)
	}

	m := c.Metrics()
	rate := m.SuccessRate
	if m.TotalRequests == 0 {
		rate = 1.0
	}

	return &models.ActionResult{
		Success:    true,
		Confidence: 0.88,
		Payload: map[string]interface{}{
			"report_id":       uuid.New().String(),
			"framework":       framework,
			"compliance_rate": rate,
			"findings":        []string{},
			"generated_at":    time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
