package explain

// Per-agent feature vocabularies used to phrase explanations. The names
// are the decision factors each agent type reasons over; attribution
// weights are computed against them.
var featureNames = map[string][]string{
	"trader": {
		"market_volatility", "trading_volume", "price_momentum", "rsi", "macd",
		"bollinger_bands", "support_level", "resistance_level", "market_sentiment",
		"correlation_btc", "correlation_eth", "liquidity_ratio", "gas_price",
		"defi_tvl", "yield_rate", "risk_score", "portfolio_balance", "allocation_drift",
		"sharpe_ratio", "max_drawdown", "beta", "alpha", "sortino_ratio",
		"var_95", "cvar_95", "win_rate", "profit_factor", "expectancy",
	},
	"compliance": {
		"transaction_amount", "sender_risk_score", "receiver_risk_score",
		"jurisdiction_risk", "aml_flags", "kyc_status", "transaction_frequency",
		"unusual_pattern", "regulatory_framework", "compliance_score",
		"audit_trail", "reporting_requirements", "cross_border",
		"sanctioned_entities", "pep_status", "adverse_media",
	},
	"supervisor": {
		"agent_performance", "decision_accuracy", "risk_exposure", "compliance_rate",
		"response_time", "system_load", "error_rate", "human_override_rate",
		"model_drift", "data_quality", "prediction_confidence", "calibration_score",
	},
	"advisor": {
		"market_conditions", "volatility_index", "fear_greed_index", "economic_indicators",
		"inflation_rate", "regulatory_changes", "institutional_flow", "retail_sentiment",
		"news_sentiment", "crypto_dominance", "defi_growth", "staking_rewards",
		"network_activity", "developer_activity",
	},
}

// FeatureNames returns the vocabulary for an agent type, nil if unknown.
func FeatureNames(agentType string) []string {
	return featureNames[agentType]
}
