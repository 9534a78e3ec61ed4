package cli

import (
	"encoding/json"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

func promptAgentType(types []string) (string, error) {
	var agentType string
	prompt := &survey.Select{
		Message: "Select an agent:",
		Options: types,
	}
	if err := survey.AskOne(prompt, &agentType); err != nil {
		return "", err
	}
	return agentType, nil
}

func promptAction(capabilities []string) (string, error) {
	var action string
	prompt := &survey.Select{
		Message:  "Select an action:",
		Options:  capabilities,
		PageSize: 10,
	}
	if err := survey.AskOne(prompt, &action); err != nil {
		return "", err
	}
	return action, nil
}

func promptJSONMap(message string) (map[string]interface{}, error) {
	var raw string
	prompt := &survey.Input{
		Message: message,
		Default: "{}",
	}
	validator := func(ans interface{}) error {
		s, ok := ans.(string)
		if !ok {
			return fmt.Errorf("expected a string answer")
		}
		if s == "" {
			return nil
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return fmt.Errorf("not a JSON object: %v", err)
		}
		return nil
	}
	if err := survey.AskOne(prompt, &raw, survey.WithValidator(validator)); err != nil {
		return nil, err
	}
	return parseJSONMap(raw)
}

func promptConfirm(message string) (bool, error) {
	var ok bool
	prompt := &survey.Confirm{
		Message: message,
		Default: true,
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}
