package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete application configuration.
// Populated from defaults, then ~/.gtip/config.yaml, then GTIP_* env
// vars, then CLI flags (viper handles the layering).
type Config struct {
	Storage     StorageConfig     `yaml:"storage" json:"storage"`
	Match       MatchConfig       `yaml:"match" json:"match"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" json:"rate_limit"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// StorageConfig locates the flat-file stores.
type StorageConfig struct {
	DataDir               string `yaml:"data_dir" json:"data_dir"`
	TariffFile            string `yaml:"tariff_file" json:"tariff_file"`
	TariffMetaFile        string `yaml:"tariff_meta_file" json:"tariff_meta_file"`
	CasesFile             string `yaml:"cases_file" json:"cases_file"`
	SearchLogFile         string `yaml:"search_log_file" json:"search_log_file"`
	ClassificationLogFile string `yaml:"classification_log_file" json:"classification_log_file"`
	ReportDir             string `yaml:"report_dir" json:"report_dir"`
}

// MatchConfig holds the empirically chosen scoring knobs.
// These are tunable constants, not protocol.
type MatchConfig struct {
	TariffRatioThreshold float64 `yaml:"tariff_ratio_threshold" json:"tariff_ratio_threshold"` // similarity floor for tariff name matching
	CaseRatioThreshold   float64 `yaml:"case_ratio_threshold" json:"case_ratio_threshold"`     // similarity floor for case search
	ScoreFloor           int     `yaml:"score_floor" json:"score_floor"`                       // minimum score for a scored tariff match
	MaxContextLines      int     `yaml:"max_context_lines" json:"max_context_lines"`           // pre-filter output cap
}

// LLMConfig configures the vision/text classification provider.
type LLMConfig struct {
	Provider   string `yaml:"provider" json:"provider"` // "openai", "gemini", "ollama", "" (disabled)
	Model      string `yaml:"model" json:"model"`
	APIKey     string `yaml:"api_key" json:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url" json:"base_url,omitempty"`
	Timeout    int    `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens" json:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy" json:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy" json:"https_proxy,omitempty"`
}

// CacheConfig configures the layered LLM response cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// ConcurrencyConfig bounds the batch classification worker pool.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// RateLimitConfig throttles outbound LLM calls.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" json:"burst_size"`
}

// OutputConfig controls CLI reporting.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	dataDir := defaultDataDir()

	return Config{
		Storage: StorageConfig{
			DataDir:               dataDir,
			TariffFile:            filepath.Join(dataDir, "tariff.jsonl"),
			TariffMetaFile:        filepath.Join(dataDir, "tariff_meta.json"),
			CasesFile:             filepath.Join(dataDir, "cases.jsonl"),
			SearchLogFile:         filepath.Join(dataDir, "history", "search_history.jsonl"),
			ClassificationLogFile: filepath.Join(dataDir, "history", "classification_log.jsonl"),
			ReportDir:             filepath.Join(dataDir, "reports"),
		},
		Match: MatchConfig{
			TariffRatioThreshold: 0.75,
			CaseRatioThreshold:   0.6,
			ScoreFloor:           50,
			MaxContextLines:      50,
		},
		LLM: LLMConfig{
			Provider:  "", // disabled until configured
			Timeout:   60,
			MaxTokens: 2000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(dataDir, "cache"),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 5,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Output: OutputConfig{},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gtip"
	}
	return filepath.Join(home, ".gtip")
}
