package models

import "time"

// ActionRequest is a request for a named action against one of the agents.
// Parameters are action-specific; TreasuryData is caller-supplied external
// state (current holdings, allocations) passed through to the handler.
type ActionRequest struct {
	AgentType    string                 `json:"agent_type"`
	Action       string                 `json:"action"`
	Parameters   map[string]interface{} `json:"parameters"`
	TreasuryData map[string]interface{} `json:"treasury_data,omitempty"`
}

// ActionResult is the outcome of a single dispatched action.
// Success=false implies Confidence=0 and Error set; Success=true implies
// Error empty. The dispatcher enforces this at its boundary.
type ActionResult struct {
	Success    bool                   `json:"success"`
	Action     string                 `json:"action"`
	Confidence float64                `json:"confidence"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// AgentResponse is the envelope the backend returns for an executed
// request: the raw result plus the best-effort explanation and timing.
type AgentResponse struct {
	AgentType     string        `json:"agent_type"`
	Action        string        `json:"action"`
	Result        *ActionResult `json:"result"`
	Confidence    float64       `json:"confidence"`
	Explanation   string        `json:"explanation,omitempty"`
	ExecutionTime float64       `json:"execution_time"`
}

// PerformanceMetrics are monotonic per-agent counters, mutated after every
// dispatched action and never reset for the life of the process. Rates are
// recomputed from the counters, not accumulated.
type PerformanceMetrics struct {
	TotalRequests      int64   `json:"total_requests"`
	SuccessfulRequests int64   `json:"successful_requests"`
	TotalTrades        int64   `json:"total_trades"`
	AvgResponseTime    float64 `json:"avg_response_time"` // seconds
	SuccessRate        float64 `json:"success_rate"`
}

// AgentStatus is a read-only snapshot of one agent.
type AgentStatus struct {
	AgentID      string             `json:"agent_id"`
	AgentType    string             `json:"agent_type"`
	Status       string             `json:"status"`
	Capabilities []string           `json:"capabilities"`
	Metrics      PerformanceMetrics `json:"performance_metrics"`
}

// Trade is a single planned or executed rebalancing trade.
type Trade struct {
	Asset             string  `json:"asset"`
	Action            string  `json:"action"` // "buy" or "sell"
	Amount            float64 `json:"amount"` // USD value
	CurrentAllocation float64 `json:"current_allocation"`
	TargetAllocation  float64 `json:"target_allocation"`
}

// ActionRecord is one row of dispatch history.
type ActionRecord struct {
	ID          int64     `json:"id"`
	AgentType   string    `json:"agent_type"`
	Action      string    `json:"action"`
	Success     bool      `json:"success"`
	Confidence  float64   `json:"confidence"`
	Error       string    `json:"error,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
	ElapsedSec  float64   `json:"elapsed_sec"`
	CreatedAt   time.Time `json:"created_at"`
}
