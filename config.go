package main

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AnthropicAPIKey string  `yaml:"anthropic_api_key"`
	LLMModel        string  `yaml:"llm_model"`
	LLMMaxTokens    int     `yaml:"llm_max_tokens"`
	LLMBatchSize    int     `yaml:"llm_batch_size"`
	LLMConfidence   float64 `yaml:"llm_confidence_threshold"`
	LLMMaxRetries   int     `yaml:"llm_max_retries"`

	GmailAccessToken string `yaml:"gmail_access_token"`
	SearchWindow     string `yaml:"search_window"` // Gmail newer_than value, e.g. "1d"
	MaxResults       int    `yaml:"max_results"`
	ExcerptMaxChars  int    `yaml:"excerpt_max_chars"`

	ReportRecipient string `yaml:"report_recipient"`
	AlertRecipient  string `yaml:"alert_recipient"` // optional override, defaults to report recipient

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	DBPath          string `yaml:"db_path"`
	ReportOutputDir string `yaml:"report_output_dir"`
	RetentionDays   int    `yaml:"alert_retention_days"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideInt(&cfg.LLMMaxTokens, "LLM_MAX_TOKENS")
	envOverrideInt(&cfg.LLMBatchSize, "LLM_BATCH_SIZE")
	envOverrideFloat(&cfg.LLMConfidence, "LLM_CONFIDENCE_THRESHOLD")
	envOverrideInt(&cfg.LLMMaxRetries, "LLM_MAX_RETRIES")
	envOverride(&cfg.GmailAccessToken, "GMAIL_ACCESS_TOKEN")
	envOverride(&cfg.SearchWindow, "SEARCH_WINDOW")
	envOverrideInt(&cfg.MaxResults, "MAX_RESULTS")
	envOverrideInt(&cfg.ExcerptMaxChars, "EXCERPT_MAX_CHARS")
	envOverride(&cfg.ReportRecipient, "REPORT_RECIPIENT")
	envOverride(&cfg.AlertRecipient, "ALERT_RECIPIENT")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverrideInt(&cfg.RetentionDays, "ALERT_RETENTION_DAYS")

	// Defaults
	if cfg.LLMMaxTokens == 0 {
		cfg.LLMMaxTokens = 4096
	}
	if cfg.LLMBatchSize == 0 {
		cfg.LLMBatchSize = 30
	}
	if cfg.LLMConfidence == 0 {
		cfg.LLMConfidence = 0.70
	}
	if cfg.LLMMaxRetries == 0 {
		cfg.LLMMaxRetries = 3
	}
	if cfg.SearchWindow == "" {
		cfg.SearchWindow = "1d"
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 100
	}
	if cfg.ExcerptMaxChars == 0 {
		cfg.ExcerptMaxChars = 200
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./mailtriage.db"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = 30
	}
	if cfg.AlertRecipient == "" {
		cfg.AlertRecipient = cfg.ReportRecipient
	}

	// Validate required fields
	required := map[string]string{
		"anthropic_api_key":  cfg.AnthropicAPIKey,
		"llm_model":          cfg.LLMModel,
		"gmail_access_token": cfg.GmailAccessToken,
		"report_recipient":   cfg.ReportRecipient,
	}
	for name, val := range required {
		if val == "" {
			log.Fatalf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}

	if cfg.LLMBatchSize < 1 {
		log.Fatalf("invalid llm_batch_size '%d': must be >= 1", cfg.LLMBatchSize)
	}
	if cfg.LLMConfidence < 0 || cfg.LLMConfidence > 1 {
		log.Fatalf("invalid llm_confidence_threshold '%f': must be between 0 and 1", cfg.LLMConfidence)
	}
	if cfg.LLMMaxRetries < 1 {
		log.Fatalf("invalid llm_max_retries '%d': must be >= 1", cfg.LLMMaxRetries)
	}
	if cfg.MaxResults < 1 {
		log.Fatalf("invalid max_results '%d': must be >= 1", cfg.MaxResults)
	}
	if cfg.RetentionDays < 1 {
		log.Fatalf("invalid alert_retention_days '%d': must be >= 1", cfg.RetentionDays)
	}
	if (cfg.SlackBotToken == "") != (cfg.SlackChannelID == "") {
		log.Fatalf("slack_bot_token and slack_channel_id must be set together")
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}
