package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sentinelai/sentinel-agents/config"
	"github.com/sentinelai/sentinel-agents/internal/backend"
	"github.com/sentinelai/sentinel-agents/models"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "sentinel-agents",
		Short: "Sentinel Agents - AI treasury agent backend",
		Long: `Sentinel Agents runs a roster of treasury management agents (trader,
compliance, supervisor, advisor) behind a single dispatch interface, with
per-agent performance metrics and human-readable decision explanations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start interactive mode
			return runInteractiveMode(cfg)
		},
	}

	rootCmd.AddCommand(newExecuteCmd(cfg))
	rootCmd.AddCommand(newStatusCmd(cfg))
	rootCmd.AddCommand(newMetricsCmd(cfg))
	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newSimulateCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	return rootCmd
}

// newExecuteCmd creates the execute command
func newExecuteCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute [AGENT] [ACTION]",
		Short: "Dispatch an action to an agent",
		Long: `Dispatch a named action to one of the agents.
Example: sentinel-agents execute trader rebalance \
  --params='{"target_allocations":{"ETH":0.6,"USDC":0.4}}' \
  --treasury='{"current_allocations":{"ETH":0.5,"USDC":0.5},"total_value_usd":10000}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paramsJSON, _ := cmd.Flags().GetString("params")
			treasuryJSON, _ := cmd.Flags().GetString("treasury")
			return runExecuteCommand(cfg, args[0], args[1], paramsJSON, treasuryJSON)
		},
	}

	cmd.Flags().String("params", "{}", "Action parameters as JSON")
	cmd.Flags().String("treasury", "", "Treasury context as JSON (current holdings, allocations)")

	return cmd
}

// newStatusCmd creates the status command
func newStatusCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status [AGENT]",
		Short: "Show agent status and capabilities",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agentType := ""
			if len(args) == 1 {
				agentType = args[0]
			}
			return runStatusCommand(cfg, agentType)
		},
	}
}

// newMetricsCmd creates the metrics command
func newMetricsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show per-agent and system performance metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetricsCommand(cfg)
		},
	}
}

// newHistoryCmd creates the history command
func newHistoryCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent dispatched actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			agentType, _ := cmd.Flags().GetString("agent")
			limit, _ := cmd.Flags().GetInt("limit")
			return runHistoryCommand(cfg, agentType, limit)
		},
	}

	cmd.Flags().String("agent", "", "Filter by agent type")
	cmd.Flags().Int("limit", 20, "Maximum records to show")

	return cmd
}

// newSimulateCmd creates the simulate command
func newSimulateCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run crisis simulation scenarios against the treasury",
		RunE: func(cmd *cobra.Command, args []string) error {
			treasuryJSON, _ := cmd.Flags().GetString("treasury")
			return runSimulateCommand(cfg, treasuryJSON)
		},
	}

	cmd.Flags().String("treasury", "", "Treasury context as JSON")

	return cmd
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Println(successStyle.Render("configuration is valid"))
			return nil
		},
	})

	return configCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Sentinel Agents v1.0.0")
			fmt.Println("AI Treasury Agent Backend")
		},
	}
}

func runExecuteCommand(cfg *config.Config, agentType, action, paramsJSON, treasuryJSON string) error {
	params, err := parseJSONMap(paramsJSON)
	if err != nil {
		return fmt.Errorf("invalid --params: %w", err)
	}
	treasury, err := parseJSONMap(treasuryJSON)
	if err != nil {
		return fmt.Errorf("invalid --treasury: %w", err)
	}

	b, err := backend.New(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	resp, err := b.Execute(context.Background(), &models.ActionRequest{
		AgentType:    agentType,
		Action:       action,
		Parameters:   params,
		TreasuryData: treasury,
	})
	if err != nil {
		return err
	}

	renderResponse(resp)
	return nil
}

func runStatusCommand(cfg *config.Config, agentType string) error {
	b, err := backend.New(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	types := b.AgentTypes()
	if agentType != "" {
		types = []string{agentType}
	}

	for _, t := range types {
		status, err := b.Status(t)
		if err != nil {
			return err
		}
		renderStatus(status)
	}
	return nil
}

func runMetricsCommand(cfg *config.Config) error {
	b, err := backend.New(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	renderMetrics(b.Metrics())
	return nil
}

func runHistoryCommand(cfg *config.Config, agentType string, limit int) error {
	b, err := backend.New(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	records, err := b.History(context.Background(), agentType, limit)
	if err != nil {
		return err
	}
	renderHistory(records)
	return nil
}

func runSimulateCommand(cfg *config.Config, treasuryJSON string) error {
	treasury, err := parseJSONMap(treasuryJSON)
	if err != nil {
		return fmt.Errorf("invalid --treasury: %w", err)
	}

	b, err := backend.New(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	resp, err := b.Execute(context.Background(), &models.ActionRequest{
		AgentType:    "advisor",
		Action:       "crisis_simulation",
		Parameters:   map[string]interface{}{},
		TreasuryData: treasury,
	})
	if err != nil {
		return err
	}

	renderResponse(resp)
	return nil
}

func parseJSONMap(raw string) (map[string]interface{}, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
