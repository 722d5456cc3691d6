package engine

import (
	"math"
	"strings"
)

// Accelerator targets. The native runtime has undefined behavior for anything
// else, so Load validates against these.
const (
	AcceleratorCPU = "cpu"
	AcceleratorGPU = "gpu"
)

// Defaults applied when corresponding Config fields are unset or invalid.
const (
	DefaultMaxTokens   = 512
	DefaultTopK        = 40
	DefaultTopP        = 0.95
	DefaultTemperature = 0.8
	// MaxTemperature caps caller-supplied temperatures; values above are
	// reduced, not rejected.
	MaxTemperature = 2.0
)

// Config is the per-handle generation configuration. It is sanitized once at
// handle construction and immutable afterwards; changing it requires a new
// handle.
type Config struct {
	Accelerator string
	MaxTokens   int
	TopK        int
	TopP        float64
	Temperature float64
}

// Sanitized returns a copy with every tunable clamped or defaulted into the
// range the engine accepts. Total and deterministic.
func (c Config) Sanitized() Config {
	out := c
	out.Accelerator = NormalizeAccelerator(c.Accelerator)
	if out.MaxTokens <= 0 {
		out.MaxTokens = DefaultMaxTokens
	}
	out.TopK = SanitizeTopK(c.TopK)
	out.TopP = SanitizeTopP(c.TopP)
	out.Temperature = SanitizeTemperature(c.Temperature, MaxTemperature)
	return out
}

// NormalizeAccelerator lower-cases the accelerator name and defaults empty to
// CPU. Unknown names pass through; Load rejects them.
func NormalizeAccelerator(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AcceleratorCPU
	}
	return s
}

// SanitizeTopP maps a caller-supplied nucleus sampling value into [0, 1].
// NaN falls back to the default; values above 1 are read as a 0-100
// percentage and divided by 100 before clamping.
func SanitizeTopP(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultTopP
	}
	if v > 1 {
		v = v / 100
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SanitizeTopK clamps top-k to a non-negative integer.
func SanitizeTopK(k int) int {
	if k < 0 {
		return 0
	}
	return k
}

// SanitizeTemperature maps a caller-supplied temperature into [0, cap].
// NaN falls back to the default; a non-positive or NaN cap falls back to
// MaxTemperature.
func SanitizeTemperature(v, cap float64) float64 {
	if math.IsNaN(cap) || cap <= 0 {
		cap = MaxTemperature
	}
	if math.IsNaN(v) {
		v = DefaultTemperature
	}
	if v < 0 {
		return 0
	}
	if v > cap {
		return cap
	}
	return v
}
