package model

// ================ Config ================

type ConversationConfig struct {
	// MaxDecideSteps bounds the decide/act cycle for a single turn. The turn
	// fails with a tool-loop error when the decision model keeps requesting
	// tools past this many decision steps.
	MaxDecideSteps int `envconfig:"CONVERSATION_MAX_DECIDE_STEPS" default:"6"`
	Tools          struct {
		MaxCalls int `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"10"`
	}
}

type DecisionModelConfig struct {
	Model       string  `envconfig:"DECISION_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"DECISION_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"DECISION_TEMPERATURE" default:"0.7"`
}

type FormatterModelConfig struct {
	Model       string  `envconfig:"FORMATTER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"FORMATTER_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"FORMATTER_TEMPERATURE" default:"0.2"`
}

type PromptConfig struct {
	BusinessType string `envconfig:"PROMPT_BUSINESS_TYPE" default:"mobile phone store"`
	BusinessName string `envconfig:"PROMPT_BUSINESS_NAME" default:"MobileMart"`
}
