package config

import "time"

type Config struct {
	// Log Config
	LogLevel   int    `json:"log_level"`   // e.g., 0 = debug, 1 = info, etc.
	LogFormat  string `json:"log_format"`  // "json" or "console"
	LogSampler bool   `json:"log_sampler"` // if true, samples logs (e.g., 1 in 5)

	// Node Config
	NodeHome string `json:"node_home"` // Client home directory (default: ~/.memoclient)

	// Compute budget
	ComputeUnitMargin  float64 `json:"compute_unit_margin"`   // Multiplier over simulated units (default: 1.10, range 1.02-1.20)
	LightSimulationCU  uint32  `json:"light_simulation_cu"`   // Simulation ceiling for mint/burn (default: 400000)
	HeavySimulationCU  uint32  `json:"heavy_simulation_cu"`   // Simulation ceiling for record operations (default: 1400000)
	LightFallbackCU    uint32  `json:"light_fallback_cu"`     // Limit when simulation reports no units, mint/burn (default: 200000)
	HeavyFallbackCU    uint32  `json:"heavy_fallback_cu"`     // Limit when simulation reports no units, others (default: 400000)

	// Submission
	ConfirmTimeoutSeconds int `json:"confirm_timeout_seconds"`  // How long to wait for confirmation (default: 60)
	ConfirmPollIntervalMs int `json:"confirm_poll_interval_ms"` // Status polling interval (default: 500)
	MaxRetries            int `json:"max_retries"`              // Retry attempts for RPC calls (default: 3)
	RetryBackoffMs        int `json:"retry_backoff_ms"`         // Initial retry backoff (default: 500)

	// Run log
	RunLogEnabled bool   `json:"run_log_enabled"` // Record submissions in SQLite (default: true via default config)
	RunLogDir     string `json:"run_log_dir"`     // Directory for run_log.db (default: <node_home>/databases)

	// Metrics
	MetricsListen string `json:"metrics_listen"` // Address for the /metrics endpoint, empty disables it

	// Balance guardrail
	GuardrailMaxMints int `json:"guardrail_max_mints"` // Upper bound on top-up mints per run (default: 1000)
}

// ConfirmTimeout returns the confirmation timeout as a duration.
func (c Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutSeconds) * time.Second
}

// ConfirmPollInterval returns the status polling interval as a duration.
func (c Config) ConfirmPollInterval() time.Duration {
	return time.Duration(c.ConfirmPollIntervalMs) * time.Millisecond
}

// RetryBackoff returns the initial retry backoff as a duration.
func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}
