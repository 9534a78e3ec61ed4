// Package agent implements the action dispatch core shared by all agents:
// a static handler registry, a failure-capturing execution boundary, and
// rolling performance counters.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelai/sentinel-agents/models"
)

// Action is a registered action name.
type Action string

// ErrUnknownAction marks a request for an action no handler is registered
// for. It never escapes ExecuteAction; it appears in the result's error
// string.
var ErrUnknownAction = errors.New("unknown action")

// HandlerFunc executes one action. A non-nil error (or a panic) is
// converted into a failed ActionResult at the dispatch boundary, so
// handlers can return errors freely and must never be able to crash the
// agent.
type HandlerFunc func(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error)

// Base carries the dispatch machinery for a concrete agent. Concrete
// agents embed it and register their handlers at construction. The metrics
// struct is the only mutable state; everything else is written once.
type Base struct {
	id        string
	agentType string
	handlers  map[Action]HandlerFunc
	metrics   tracker
}

func NewBase(agentType string) *Base {
	return &Base{
		id:        uuid.New().String(),
		agentType: agentType,
		handlers:  make(map[Action]HandlerFunc),
	}
}

func (b *Base) ID() string {
	return b.id
}

func (b *Base) Type() string {
	return b.agentType
}

// Register adds a handler to the static registry. Registering the same
// action twice is a programming error and panics so it surfaces in tests.
func (b *Base) Register(action Action, fn HandlerFunc) {
	if _, exists := b.handlers[action]; exists {
		panic(fmt.Sprintf("agent %s: duplicate handler for action %q", b.agentType, action))
	}
	b.handlers[action] = fn
}

// Capabilities lists the registered action names, sorted.
func (b *Base) Capabilities() []string {
	caps := make([]string, 0, len(b.handlers))
	for action := range b.handlers {
		caps = append(caps, string(action))
	}
	sort.Strings(caps)
	return caps
}

// ExecuteAction dispatches one action and updates the metrics afterwards,
// success or not. It always returns a well-formed result: unknown actions,
// handler errors, and handler panics all come back as failed results with
// confidence 0, never as an error or a crash.
func (b *Base) ExecuteAction(ctx context.Context, action Action, params, treasury map[string]interface{}) *models.ActionResult {
	start := time.Now()
	result := b.dispatch(ctx, action, params, treasury)
	b.metrics.record(result.Success, time.Since(start))
	return result
}

func (b *Base) dispatch(ctx context.Context, action Action, params, treasury map[string]interface{}) (result *models.ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = Failure(action, fmt.Sprintf("handler panic: %v", r))
		}
	}()

	fn, ok := b.handlers[action]
	if !ok {
		return Failure(action, fmt.Sprintf("%v: %s", ErrUnknownAction, action))
	}

	res, err := fn(ctx, params, treasury)
	if err != nil {
		return Failure(action, err.Error())
	}
	if res == nil {
		return Failure(action, "handler returned no result")
	}

	// Normalize the result so the success/confidence/error invariants hold
	// regardless of what the handler filled in.
	res.Action = string(action)
	if !res.Success {
		res.Confidence = 0
		if res.Error == "" {
			res.Error = "handler reported failure"
		}
		return res
	}
	res.Error = ""
	if res.Confidence < 0 {
		res.Confidence = 0
	}
	if res.Confidence > 1 {
		res.Confidence = 1
	}
	return res
}

// RecordTrade bumps the trade counter. Trade-executing handlers call this
// once per booked trade.
func (b *Base) RecordTrade(n int64) {
	b.metrics.addTrades(n)
}

// Metrics returns a snapshot of the rolling counters.
func (b *Base) Metrics() models.PerformanceMetrics {
	return b.metrics.snapshot()
}

// Status returns a read-only snapshot of the agent. It mutates nothing:
// two calls with no dispatch in between are identical.
func (b *Base) Status() models.AgentStatus {
	return models.AgentStatus{
		AgentID:      b.id,
		AgentType:    b.agentType,
		Status:       "active",
		Capabilities: b.Capabilities(),
		Metrics:      b.metrics.snapshot(),
	}
}

// Failure builds a failed result honoring the result invariants.
func Failure(action Action, msg string) *models.ActionResult {
	return &models.ActionResult{
		Success:    false,
		Action:     string(action),
		Confidence: 0,
		Error:      msg,
	}
}
