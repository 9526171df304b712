package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Provider      Provider `yaml:"provider"`
	Judge         Model    `yaml:"judge"`
	SyntheticUser Model    `yaml:"synthetic_user"`
	Agent         Model    `yaml:"agent"`
	Scenarios     Dirs     `yaml:"scenarios"`
	Results       Results  `yaml:"results"`
	Secrets       Secrets  `yaml:"secrets"`
	Analysis      Analysis `yaml:"analysis"`
}

type Provider struct {
	Kind      string `yaml:"kind"` // openai or ollama
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type Model struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type Dirs struct {
	Dir string `yaml:"dir"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

type Secrets struct {
	EnvFile string `yaml:"env_file"`
}

// Analysis carries the default thresholds for the trends/flaky/stability
// commands. Zero values fall back to the analysis package defaults.
type Analysis struct {
	WindowSize        int     `yaml:"window_size"`
	SlopeThreshold    float64 `yaml:"slope_threshold"`
	MinRuns           int     `yaml:"min_runs"`
	FlakyBandLow      float64 `yaml:"flaky_band_low"`
	FlakyBandHigh     float64 `yaml:"flaky_band_high"`
	CVThreshold       float64 `yaml:"cv_threshold"`
	PassRateThreshold float64 `yaml:"pass_rate_threshold"`
	ScoreThreshold    float64 `yaml:"score_threshold"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Provider.Kind == "" {
		cfg.Provider.Kind = "openai"
	}
	switch cfg.Provider.Kind {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unknown provider kind %q", cfg.Provider.Kind)
	}
	if cfg.Provider.APIKeyEnv == "" {
		cfg.Provider.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Judge.Model == "" {
		return fmt.Errorf("judge model is required")
	}
	if cfg.SyntheticUser.Model == "" {
		cfg.SyntheticUser.Model = cfg.Judge.Model
	}
	if cfg.Agent.Model == "" {
		cfg.Agent.Model = cfg.Judge.Model
	}
	if cfg.Scenarios.Dir == "" {
		cfg.Scenarios.Dir = "scenarios"
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "test-results"
	}
	return nil
}
