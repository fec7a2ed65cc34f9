package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "grant-mapper/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// MatchConfig holds settings for heuristic candidate selection.
type MatchConfig struct {
	// MaxCandidates caps the candidates kept per publication, bounding the
	// number of external judgment calls (default 2).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`
}

// JudgeConfig holds settings for the external relevance-judgment backend.
type JudgeConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the chat-completion endpoint of the scoring backend.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the model identifier sent with each judgment request.
	Model string `json:"model" yaml:"model"`

	// Authorization is the value of the Authorization header.
	Authorization string `json:"authorization,omitempty" yaml:"authorization,omitempty"`

	// Temperature is the sampling temperature (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens is the reply token budget (default 150).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// BatchConfig holds settings for the batch coordinator.
type BatchConfig struct {
	// BatchSize is the number of publications per batch (default 20).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// CallDelay is the client-side delay between judgment calls (default 2s).
	CallDelay time.Duration `json:"call_delay" yaml:"call_delay"`

	// RetryDelay is the backoff after a rate-limit interruption (default 60s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`

	// ProgressFile is the path of the progress document (default "progress.yaml").
	ProgressFile string `json:"progress_file" yaml:"progress_file"`

	// ResultsFile is the path of the cumulative results CSV (default "results.csv").
	ResultsFile string `json:"results_file" yaml:"results_file"`

	// CheckpointFile is the path of the partial-results CSV written on
	// rate-limit interruptions (default "checkpoint.csv").
	CheckpointFile string `json:"checkpoint_file" yaml:"checkpoint_file"`
}

// PipelineConfig groups all stage configurations for a mapping run.
type PipelineConfig struct {
	Match MatchConfig `json:"match" yaml:"match"`
	Judge JudgeConfig `json:"judge" yaml:"judge"`
	Batch BatchConfig `json:"batch" yaml:"batch"`
}
