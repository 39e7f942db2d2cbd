package model

// ================ Config ================

type ConversationConfig struct {
	TTL             string `envconfig:"CONVERSATION_TTL" default:"720h"`
	MaxHistoryTurns int    `envconfig:"CONVERSATION_MAX_HISTORY_TURNS" default:"10"`
	Tools           struct {
		CallTimeout string `envconfig:"CONVERSATION_TOOL_CALL_TIMEOUT" default:"10s"`
		MaxCalls    int    `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"8"`
	}
}

type ChatModelConfig struct {
	Model       string  `envconfig:"CHAT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"CHAT_TEMPERATURE" default:"0.2"`
}

type PromptConfig struct {
	BusinessName string `envconfig:"PROMPT_BUSINESS_NAME" default:"Gemlight Diamonds"`
	BusinessType string `envconfig:"PROMPT_BUSINESS_TYPE" default:"luxury jewelry company"`
}
