package agent

import (
	"sync"
	"time"

	"github.com/sentinelai/sentinel-agents/models"
)

// tracker owns the performance counters for one agent. Counters are
// monotonic; rates and the running average are recomputed on every record,
// never accumulated. The mutex keeps the running-mean update from losing
// writes if dispatch ever happens from more than one goroutine.
type tracker struct {
	mu sync.Mutex
	m  models.PerformanceMetrics
}

func (t *tracker) record(success bool, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.m.TotalRequests++
	if success {
		t.m.SuccessfulRequests++
	}

	n := float64(t.m.TotalRequests)
	t.m.AvgResponseTime = (t.m.AvgResponseTime*(n-1) + elapsed.Seconds()) / n
	if t.m.TotalRequests > 0 {
		t.m.SuccessRate = float64(t.m.SuccessfulRequests) / n
	}
}

func (t *tracker) addTrades(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m.TotalTrades += n
}

func (t *tracker) snapshot() models.PerformanceMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m
}
