// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DelayRange bounds a randomized delay in milliseconds.
type DelayRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Profile describes the candidate: role, level, locations and the
// include/exclude keyword lists used for filtering and scoring.
type Profile struct {
	Role            string   `yaml:"role"`
	Level           string   `yaml:"level"`
	Locations       []string `yaml:"locations"`
	IncludeKeywords []string `yaml:"include_keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
}

type Behavior struct {
	TypingDelayMS DelayRange `yaml:"typing_delay_ms"`
	ActionDelayMS DelayRange `yaml:"action_delay_ms"`
}

type Config struct {
	//Bot behavior
	Mode                  string `yaml:"mode"` // automatic | semi-automatic
	Headless              bool   `yaml:"headless"`
	DailyApplicationLimit int    `yaml:"daily_application_limit"`

	Profile  Profile  `yaml:"profile"`
	Behavior Behavior `yaml:"behavior"`

	//Paths
	LedgerPath    string `yaml:"ledger_path"`
	SlotsPath     string `yaml:"slots_path"`
	ProfileDir    string `yaml:"profile_dir"`
	ScreenshotDir string `yaml:"screenshot_dir"`
	AnswersPath   string `yaml:"answers_path"`
	ResumePath    string `yaml:"resume_path"`
	CookiesPath   string `yaml:"cookies_path"`

	//Collaborators (env-overridable secrets)
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
	OpenAIKey      string `yaml:"openai_key"`
	OpenAIModel    string `yaml:"openai_model"`
}

// Load reads the YAML config at path, overlays environment variables and
// fills defaults. Telegram and OpenAI credentials are optional: without them
// the engine degrades to deterministic scoring and log-only notifications.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("⚠️ Could not read %s: %v. Using defaults.", path, err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	//Override with env vars
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAIKey = key
	}

	cfg.applyDefaults()

	if cfg.Mode != "automatic" && cfg.Mode != "semi-automatic" {
		return nil, fmt.Errorf("invalid mode %q: must be automatic or semi-automatic", cfg.Mode)
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Mode == "" {
		cfg.Mode = "semi-automatic"
	}
	if cfg.DailyApplicationLimit <= 0 {
		cfg.DailyApplicationLimit = 10
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = "data/applied_jobs.csv"
	}
	if cfg.SlotsPath == "" {
		cfg.SlotsPath = "data/slots.csv"
	}
	if cfg.ProfileDir == "" {
		cfg.ProfileDir = "browser_profile"
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "data/screenshots"
	}
	if cfg.AnswersPath == "" {
		cfg.AnswersPath = "configs/answers.yaml"
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o"
	}
	if cfg.Behavior.TypingDelayMS.Max == 0 {
		cfg.Behavior.TypingDelayMS = DelayRange{Min: 50, Max: 150}
	}
	if cfg.Behavior.ActionDelayMS.Max == 0 {
		cfg.Behavior.ActionDelayMS = DelayRange{Min: 1000, Max: 2500}
	}
}
