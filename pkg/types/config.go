// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "deep-research/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the web search capability.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the LinkUp API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxSearches caps how many searches one session may perform (default 5).
	MaxSearches int `json:"max_searches" yaml:"max_searches"`

	// PacingDelay is the delay inserted before each provider call to stay
	// under provider rate limits (default 1.5s).
	PacingDelay time.Duration `json:"pacing_delay" yaml:"pacing_delay"`

	// MaxResultChars caps the raw result text kept per search (default 4000).
	MaxResultChars int `json:"max_result_chars" yaml:"max_result_chars"`

	// OutputType selects the provider response shape (default searchResults).
	OutputType OutputType `json:"output_type" yaml:"output_type"`
}

// LLMConfig holds settings for the language-model capability.
type LLMConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the model identifier (e.g. "gemini-2.5-pro").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the sampling temperature (default 0.4).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxOutputTokens caps the model response length (default 4000).
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens"`

	// MaxRetries is the number of internal retries for transient API
	// failures (default 3). Rate-limit responses are not retried here; the
	// session controller applies its own backoff policy to those.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StageConfig bounds one pipeline stage.
type StageConfig struct {
	// MaxExecutionTime is the wall-clock ceiling for the stage.
	MaxExecutionTime time.Duration `json:"max_execution_time" yaml:"max_execution_time"`

	// MaxIterations caps internal reasoning rounds within the stage.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
}

// RetryConfig holds settings for the session retry controller.
type RetryConfig struct {
	// MaxRetries is the number of whole-pipeline attempts (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryDelay is the base delay between attempts (default 3s). Generic
	// failures wait RetryDelay; rate-limit failures escalate linearly.
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`

	// MinReportChars is the substantiality threshold for accepting a report
	// body as-is (default 500).
	MinReportChars int `json:"min_report_chars" yaml:"min_report_chars"`
}

// ArchiveConfig holds settings for the report archive.
type ArchiveConfig struct {
	// Dir is the base directory for the archive (contains index/, exports/).
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all settings for one research pipeline.
type PipelineConfig struct {
	Search SearchConfig `json:"search" yaml:"search"`
	LLM    LLMConfig    `json:"llm" yaml:"llm"`

	// SearchStage bounds the search stage (default 300s, 3 iterations).
	SearchStage StageConfig `json:"search_stage" yaml:"search_stage"`

	// WriterStage bounds the synthesis stage (default 240s, 2 iterations).
	WriterStage StageConfig `json:"writer_stage" yaml:"writer_stage"`

	// MaxExecutionTime is the wall-clock ceiling across both stages
	// combined (default 600s).
	MaxExecutionTime time.Duration `json:"max_execution_time" yaml:"max_execution_time"`

	Retry   RetryConfig   `json:"retry" yaml:"retry"`
	Archive ArchiveConfig `json:"archive" yaml:"archive"`
}

// DefaultPipelineConfig returns a PipelineConfig with all defaults applied.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Search: SearchConfig{
			HTTPConfig:     HTTPConfig{Timeout: 30 * time.Second, UserAgent: "deep-research/0.1"},
			MaxSearches:    5,
			PacingDelay:    1500 * time.Millisecond,
			MaxResultChars: 4000,
			OutputType:     OutputSearchResults,
		},
		LLM: LLMConfig{
			HTTPConfig:      HTTPConfig{Timeout: 120 * time.Second, UserAgent: "deep-research/0.1"},
			Model:           "gemini-2.5-pro",
			Temperature:     0.4,
			MaxOutputTokens: 4000,
			MaxRetries:      3,
		},
		SearchStage:      StageConfig{MaxExecutionTime: 300 * time.Second, MaxIterations: 3},
		WriterStage:      StageConfig{MaxExecutionTime: 240 * time.Second, MaxIterations: 2},
		MaxExecutionTime: 600 * time.Second,
		Retry: RetryConfig{
			MaxRetries:     3,
			RetryDelay:     3 * time.Second,
			MinReportChars: 500,
		},
		Archive: ArchiveConfig{Dir: "reports", MaxResults: 20},
	}
}
