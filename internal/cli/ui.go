package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sentinelai/sentinel-agents/internal/backend"
	"github.com/sentinelai/sentinel-agents/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func renderResponse(resp *models.AgentResponse) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("%s / %s", resp.AgentType, resp.Action)))

	if resp.Result.Success {
		fmt.Println(successStyle.Render("success"))
	} else {
		fmt.Println(errorStyle.Render("failed: " + resp.Result.Error))
	}
	fmt.Printf("%s %.2f\n", labelStyle.Render("confidence:"), resp.Confidence)
	fmt.Printf("%s %.4fs\n", labelStyle.Render("elapsed:"), resp.ExecutionTime)

	if len(resp.Result.Payload) > 0 {
		fmt.Println(sectionStyle.Render("Payload"))
		data, err := json.MarshalIndent(resp.Result.Payload, "", "  ")
		if err == nil {
			fmt.Println(string(data))
		}
	}

	if resp.Explanation != "" {
		fmt.Println(sectionStyle.Render("Explanation"))
		fmt.Println(resp.Explanation)
	}
}

func renderStatus(status models.AgentStatus) {
	fmt.Println(titleStyle.Render(status.AgentType))
	fmt.Printf("%s %s\n", labelStyle.Render("id:"), status.AgentID)
	fmt.Printf("%s %s\n", labelStyle.Render("status:"), status.Status)
	fmt.Printf("%s %s\n", labelStyle.Render("capabilities:"), strings.Join(status.Capabilities, ", "))
	renderPerformance(status.Metrics)
	fmt.Println()
}

func renderPerformance(m models.PerformanceMetrics) {
	fmt.Printf("%s requests=%d successful=%d trades=%d avg_time=%.4fs success_rate=%.1f%%\n",
		labelStyle.Render("metrics:"),
		m.TotalRequests, m.SuccessfulRequests, m.TotalTrades,
		m.AvgResponseTime, m.SuccessRate*100)
}

func renderMetrics(sm backend.SystemMetrics) {
	fmt.Println(titleStyle.Render("Performance Metrics"))

	types := make([]string, 0, len(sm.Agents))
	for t := range sm.Agents {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		fmt.Println(sectionStyle.Render(t))
		renderPerformance(sm.Agents[t])
	}

	fmt.Println(sectionStyle.Render("system"))
	renderPerformance(sm.System)
}

func renderHistory(records []models.ActionRecord) {
	if len(records) == 0 {
		fmt.Println(dimStyle.Render("no recorded actions"))
		return
	}

	fmt.Println(titleStyle.Render("Action History"))
	for _, r := range records {
		outcome := successStyle.Render("ok")
		if !r.Success {
			outcome = errorStyle.Render("failed")
		}
		fmt.Printf("%s  %-12s %-24s %s  conf=%.2f  %.4fs\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.AgentType, r.Action, outcome, r.Confidence, r.ElapsedSec)
		if r.Error != "" {
			fmt.Printf("    %s\n", dimStyle.Render(r.Error))
		}
	}
}
