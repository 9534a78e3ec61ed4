// Package backend wires the agents, explainer, and history store into a
// single explicitly-constructed object. There is no process-wide registry:
// callers build a Backend once and pass it where it is needed.
package backend

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/sentinelai/sentinel-agents/config"
	"github.com/sentinelai/sentinel-agents/internal/agent"
	"github.com/sentinelai/sentinel-agents/internal/agents"
	"github.com/sentinelai/sentinel-agents/internal/dataflows"
	"github.com/sentinelai/sentinel-agents/internal/explain"
	"github.com/sentinelai/sentinel-agents/internal/storage"
	"github.com/sentinelai/sentinel-agents/models"
)

// Agent is the slice of the dispatch base the backend routes through.
type Agent interface {
	ID() string
	Type() string
	ExecuteAction(ctx context.Context, action agent.Action, params, treasury map[string]interface{}) *models.ActionResult
	Status() models.AgentStatus
	Metrics() models.PerformanceMetrics
}

// SystemMetrics is the per-agent metric map plus the system aggregate.
type SystemMetrics struct {
	Agents map[string]models.PerformanceMetrics `json:"agents"`
	System models.PerformanceMetrics            `json:"system"`
}

type Backend struct {
	agents    map[string]Agent
	explainer explain.Explainer
	history   *storage.HistoryStore
	debug     bool
}

// New builds the full agent roster from configuration. The market data
// source is simulated unless live data is enabled; the history store is
// opened only when configured, and its absence never blocks dispatch.
func New(cfg *config.Config) (*Backend, error) {
	var source dataflows.MarketDataSource
	if cfg.LiveData {
		cache := dataflows.NewFileCache(cfg.DataCacheDir, 15*time.Minute, cfg.CacheEnabled)
		source = dataflows.NewYahooSource(cache)
	} else {
		source = dataflows.NewSimulatedSource(cfg.SimulationSeed)
	}

	var headlines agents.HeadlineFetcher
	if cfg.HeadlineURL != "" {
		headlines = dataflows.NewHeadlineClient(cfg.HeadlineURL, cfg.UserAgent)
	}

	b := &Backend{
		agents:    make(map[string]Agent),
		explainer: explain.NewTemplateExplainer(),
		debug:     cfg.Debug,
	}

	roster := []Agent{
		agents.NewTrader(source, agents.WithMinTradeSize(cfg.MinTradeSize)),
		agents.NewCompliance(),
		agents.NewSupervisor(),
		agents.NewAdvisor(source, headlines),
	}
	for _, a := range roster {
		b.agents[a.Type()] = a
	}

	if cfg.HistoryEnabled {
		store, err := storage.Open(cfg.HistoryDBPath)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		b.history = store
	}

	return b, nil
}

// NewWithAgents builds a backend over an explicit roster; used by tests
// and by callers that bring their own collaborators.
func NewWithAgents(explainer explain.Explainer, history *storage.HistoryStore, roster ...Agent) *Backend {
	b := &Backend{
		agents:    make(map[string]Agent, len(roster)),
		explainer: explainer,
		history:   history,
	}
	for _, a := range roster {
		b.agents[a.Type()] = a
	}
	return b
}

// SetDebug toggles per-dispatch debug logging.
func (b *Backend) SetDebug(enabled bool) {
	b.debug = enabled
}

// Close releases the history store, if any.
func (b *Backend) Close() error {
	if b.history == nil {
		return nil
	}
	return b.history.Close()
}

// AgentTypes lists the registered agent types, sorted.
func (b *Backend) AgentTypes() []string {
	types := make([]string, 0, len(b.agents))
	for t := range b.agents {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Execute routes one request to its agent, attaches a best-effort
// explanation, and records the outcome. Unknown agent types are the only
// error path; everything action-level comes back inside the result.
func (b *Backend) Execute(ctx context.Context, req *models.ActionRequest) (*models.AgentResponse, error) {
	target, ok := b.agents[req.AgentType]
	if !ok {
		return nil, fmt.Errorf("unknown agent type: %s", req.AgentType)
	}

	treasury := req.TreasuryData
	if req.AgentType == "supervisor" {
		treasury = b.withAgentMetrics(treasury)
	}

	start := time.Now()
	result := target.ExecuteAction(ctx, agent.Action(req.Action), req.Parameters, treasury)
	elapsed := time.Since(start)

	if b.debug {
		log.Printf("dispatched %s/%s success=%t confidence=%.2f elapsed=%.4fs",
			req.AgentType, req.Action, result.Success, result.Confidence, elapsed.Seconds())
	}

	explanation := ""
	if b.explainer != nil {
		text, err := b.explainer.ExplainDecision(ctx, req.AgentType, req.Action, req.Parameters, result)
		if err != nil {
			// Degrade to no explanation; the action outcome stands.
			log.Printf("explanation for %s/%s failed: %v", req.AgentType, req.Action, err)
		} else {
			explanation = text
		}
	}

	if b.history != nil {
		rec := models.ActionRecord{
			AgentType:   req.AgentType,
			Action:      req.Action,
			Success:     result.Success,
			Confidence:  result.Confidence,
			Error:       result.Error,
			Explanation: explanation,
			ElapsedSec:  elapsed.Seconds(),
		}
		if err := b.history.Record(ctx, rec); err != nil {
			log.Printf("history record failed: %v", err)
		}
	}

	return &models.AgentResponse{
		AgentType:     req.AgentType,
		Action:        req.Action,
		Result:        result,
		Confidence:    result.Confidence,
		Explanation:   explanation,
		ExecutionTime: elapsed.Seconds(),
	}, nil
}

// withAgentMetrics hands the supervisor a snapshot of every agent's
// counters without giving it the agents themselves.
func (b *Backend) withAgentMetrics(treasury map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(treasury)+1)
	for k, v := range treasury {
		out[k] = v
	}
	if _, supplied := out["agent_metrics"]; !supplied {
		snapshots := make(map[string]models.PerformanceMetrics, len(b.agents))
		for name, a := range b.agents {
			snapshots[name] = a.Metrics()
		}
		out["agent_metrics"] = snapshots
	}
	return out
}

// Status returns one agent's status snapshot.
func (b *Backend) Status(agentType string) (models.AgentStatus, error) {
	target, ok := b.agents[agentType]
	if !ok {
		return models.AgentStatus{}, fmt.Errorf("unknown agent type: %s", agentType)
	}
	return target.Status(), nil
}

// Metrics returns every agent's counters plus the system aggregate:
// summed requests and trades, mean of the per-agent response times and
// success rates.
func (b *Backend) Metrics() SystemMetrics {
	out := SystemMetrics{Agents: make(map[string]models.PerformanceMetrics, len(b.agents))}

	var sumAvg, sumRate float64
	for name, a := range b.agents {
		m := a.Metrics()
		out.Agents[name] = m
		out.System.TotalRequests += m.TotalRequests
		out.System.SuccessfulRequests += m.SuccessfulRequests
		out.System.TotalTrades += m.TotalTrades
		sumAvg += m.AvgResponseTime
		sumRate += m.SuccessRate
	}
	if n := float64(len(b.agents)); n > 0 {
		out.System.AvgResponseTime = sumAvg / n
		out.System.SuccessRate = sumRate / n
	}
	return out
}

// History lists recent dispatch records, newest first. It errors when the
// store is disabled.
func (b *Backend) History(ctx context.Context, agentType string, limit int) ([]models.ActionRecord, error) {
	if b.history == nil {
		return nil, fmt.Errorf("action history is disabled")
	}
	return b.history.List(ctx, agentType, limit)
}
