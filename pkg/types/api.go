package types

// GenerateRequest is the payload accepted by POST /generate.
// Sampling parameters are fixed per handle at initialization time; a request
// only names the target model and the prompt.
type GenerateRequest struct {
	// Optional model identifier. If empty, the server default is used.
	// example: gemma-2b-it-q4.task
	Model string `json:"model,omitempty" example:"gemma-2b-it-q4.task"`
	// Required prompt text to generate a completion for.
	// example: Summarize the farmer's answer in one sentence.
	Prompt string `json:"prompt" example:"Summarize the farmer's answer in one sentence."`
}

// HandleRequest names a handle for POST /cancel and POST /reset.
type HandleRequest struct {
	// Model identifier of the target handle. If empty, the server default is used.
	// example: gemma-2b-it-q4.task
	Model string `json:"model,omitempty" example:"gemma-2b-it-q4.task"`
}

// Increment is one NDJSON line of a /generate stream.
type Increment struct {
	// Text fragment produced by the engine. Empty on the terminal line.
	Text string `json:"text"`
	// Final marks the terminal line of the stream. Delivered exactly once.
	// example: false
	Final bool `json:"final"`
	// Outcome classifies the finished generation: completed, cancelled or failed.
	// Only present on the terminal line.
	// example: completed
	Outcome string `json:"outcome,omitempty" example:"completed"`
	// Content is the full accumulated text of the generation. Only present on
	// the terminal line.
	Content string `json:"content,omitempty"`
	// Error carries the failure reason when outcome is failed.
	Error string `json:"error,omitempty"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available models.
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// HandleStatus summarizes one initialized handle for /status.
type HandleStatus struct {
	// ID of the model this handle serves.
	// example: gemma-2b-it-q4.task
	ModelID string `json:"model_id" example:"gemma-2b-it-q4.task"`
	// Current lifecycle state of the handle (idle, running, unloaded).
	// example: idle
	State string `json:"state" example:"idle"`
	// Whether a generation is in flight on this handle.
	// example: false
	Busy bool `json:"busy" example:"false"`
	// Last time this handle served a request (unix seconds).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// Outcome of the most recently finished generation, if any.
	// example: completed
	LastOutcome string `json:"last_outcome,omitempty" example:"completed"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Initialized handles.
	Handles []HandleStatus `json:"handles"`
	// Default model id used when a request omits the model.
	DefaultModel string `json:"default_model,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of generations started since boot.
	// example: 12
	GenerationsTotal uint64 `json:"generations_total" example:"12"`
	// Total number of busy rejections since boot.
	// example: 2
	RejectionsTotal uint64 `json:"rejections_total" example:"2"`
}
