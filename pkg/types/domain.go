package types

// Model represents a discoverable or loadable model file on disk.
type Model struct {
	// Stable identifier for the model (the filename by default).
	// example: gemma-2b-it-q4.task
	ID string `json:"id" example:"gemma-2b-it-q4.task"`
	// Human-friendly name.
	// example: Gemma 2B IT (Q4)
	Name string `json:"name" example:"Gemma 2B IT (Q4)"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/gemma-2b-it-q4.task
	Path string `json:"path" example:"/home/user/models/gemma-2b-it-q4.task"`
	// Quantization level or variant string.
	// example: Q4_K_M
	Quant string `json:"quant,omitempty" example:"Q4_K_M"`
	// Optional family (e.g., gemma, llama, phi).
	// example: gemma
	Family string `json:"family,omitempty" example:"gemma"`
}
