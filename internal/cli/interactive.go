package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/sentinelai/sentinel-agents/config"
	"github.com/sentinelai/sentinel-agents/internal/backend"
	"github.com/sentinelai/sentinel-agents/models"
)

// runInteractiveMode drives a prompt loop over one long-lived backend so
// metrics and history accumulate across dispatched actions.
func runInteractiveMode(cfg *config.Config) error {
	b, err := backend.New(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	fmt.Println(titleStyle.Render("Sentinel Agents"))
	fmt.Println(dimStyle.Render("interactive mode, Ctrl+C to exit"))
	fmt.Println()

	for {
		if err := runInteractiveStep(b); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				fmt.Println(dimStyle.Render("bye"))
				return nil
			}
			fmt.Println(errorStyle.Render(err.Error()))
		}

		again, err := promptConfirm("Dispatch another action?")
		if err != nil || !again {
			fmt.Println(dimStyle.Render("bye"))
			return nil
		}
		fmt.Println()
	}
}

func runInteractiveStep(b *backend.Backend) error {
	agentType, err := promptAgentType(b.AgentTypes())
	if err != nil {
		return err
	}

	status, err := b.Status(agentType)
	if err != nil {
		return err
	}

	action, err := promptAction(status.Capabilities)
	if err != nil {
		return err
	}

	params, err := promptJSONMap("Action parameters (JSON):")
	if err != nil {
		return err
	}

	treasury, err := promptJSONMap("Treasury context (JSON):")
	if err != nil {
		return err
	}

	resp, err := b.Execute(context.Background(), &models.ActionRequest{
		AgentType:    agentType,
		Action:       action,
		Parameters:   params,
		TreasuryData: treasury,
	})
	if err != nil {
		return err
	}

	fmt.Println()
	renderResponse(resp)
	return nil
}
