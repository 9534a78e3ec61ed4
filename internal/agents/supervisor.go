package agents

import (
	"context"
	"fmt"
	"sort"

	"github.com/sentinelai/sentinel-agents/internal/agent"
	"github.com/sentinelai/sentinel-agents/models"
)

// Anomaly thresholds for agent oversight.
const (
	minHealthySuccessRate = 0.5
	maxHealthyLatencySec  = 5.0
	approvalThreshold     = 0.7
)

// Supervisor oversees the other agents. It consumes their metric
// snapshots through the request context; it holds no references to the
// agents themselves.
type Supervisor struct {
	*agent.Base
}

func NewSupervisor() *Supervisor {
	s := &Supervisor{Base: agent.NewBase("supervisor")}

	s.Register("monitor_agents", s.monitorAgents)
	s.Register("detect_anomalies", s.detectAnomalies)
	s.Register("approve_decision", s.approveDecision)

	return s
}

// agentMetrics pulls per-agent metric snapshots out of the treasury
// context, where the backend places them under "agent_metrics".
func agentMetrics(treasury map[string]interface{}) (map[string]models.PerformanceMetrics, error) {
	raw, ok := treasury["agent_metrics"]
	if !ok {
		return nil, fmt.Errorf("missing context: agent_metrics")
	}
	snapshots, ok := raw.(map[string]models.PerformanceMetrics)
	if !ok {
		return nil, fmt.Errorf("invalid context: agent_metrics has unexpected type %T", raw)
	}
	return snapshots, nil
}

func (s *Supervisor) monitorAgents(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	snapshots, err := agentMetrics(treasury)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(snapshots))
	for name := range snapshots {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := 0
	report := make(map[string]interface{}, len(snapshots))
	for _, name := range names {
		m := snapshots[name]
		ok := m.TotalRequests == 0 || (m.SuccessRate >= minHealthySuccessRate && m.AvgResponseTime <= maxHealthyLatencySec)
		if ok {
			healthy++
		}
		report[name] = map[string]interface{}{
			"healthy":           ok,
			"total_requests":    m.TotalRequests,
			"success_rate":      m.SuccessRate,
			"avg_response_time": m.AvgResponseTime,
		}
	}

	confidence := 1.0
	if len(snapshots) > 0 {
		confidence = float64(healthy) / float64(len(snapshots))
	}

	return &models.ActionResult{
		Success:    true,
		Confidence: confidence,
		Payload: map[string]interface{}{
			"agents":         report,
			"agents_total":   len(snapshots),
			"agents_healthy": healthy,
		},
	}, nil
}

func (s *Supervisor) detectAnomalies(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	snapshots, err := agentMetrics(treasury)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(snapshots))
	for name := range snapshots {
		names = append(names, name)
	}
	sort.Strings(names)

	var anomalies []map[string]interface{}
	for _, name := range names {
		m := snapshots[name]
		if m.TotalRequests == 0 {
			continue
		}
		if m.SuccessRate < minHealthySuccessRate {
			anomalies = append(anomalies, map[string]interface{}{
				"agent":  name,
				"kind":   "error_rate",
				"detail": fmt.Sprintf("success rate %.2f below %.2f", m.SuccessRate, minHealthySuccessRate),
			})
		}
		if m.AvgResponseTime > maxHealthyLatencySec {
			anomalies = append(anomalies, map[string]interface{}{
				"agent":  name,
				"kind":   "latency",
				"detail": fmt.Sprintf("avg response time %.2fs above %.1fs", m.AvgResponseTime, maxHealthyLatencySec),
			})
		}
	}

	return &models.ActionResult{
		Success:    true,
		Confidence: 0.9,
		Payload: map[string]interface{}{
			"anomalies":       anomalies,
			"anomaly_count":   len(anomalies),
			"agents_observed": len(snapshots),
		},
	}, nil
}

func (s *Supervisor) approveDecision(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	confidence := floatOr(params["confidence"], -1)
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("invalid parameter: confidence must be in [0,1]")
	}
	riskLevel, _ := params["risk_level"].(string)

	threshold := approvalThreshold
	if riskLevel == "high" {
		threshold = 0.9
	}

	approved := confidence >= threshold
	reason := "confidence meets approval threshold"
	if !approved {
		reason = fmt.Sprintf("confidence %.2f below threshold %.2f", confidence, threshold)
	}

	return &models.ActionResult{
		Success:    true,
		Confidence: 0.95,
		Payload: map[string]interface{}{
			"approved":             approved,
			"threshold":            threshold,
			"submitted_confidence": confidence,
			"reason":               reason,
			"human_review":         !approved && riskLevel == "high",
		},
	}, nil
}
