package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log       Log       `yaml:"log"`
	DB        DB        `yaml:"db"`
	Telegram  Telegram  `yaml:"telegram"`
	Ollama    Ollama    `yaml:"ollama"`
	Chat      Chat      `yaml:"chat"`
	Scheduler Scheduler `yaml:"scheduler"`
	API       API       `yaml:"api"`
}

type Telegram struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789" validate:"required"`
	// Only accept messages from these chat ids; empty list accepts everyone
	AllowedChatIDs []int64 `yaml:"allowed_chat_ids" example:"[123456789]"`
}

type Ollama struct {
	// Ollama server url
	Host string `yaml:"host" example:"http://localhost:11434" validate:"required"`
	// Model name
	Model string `yaml:"model" example:"qwen2.5-coder:7b" validate:"required"`
}

type Chat struct {
	// Maximum LLM+tool rounds per user turn
	MaxToolRounds int `yaml:"max_tool_rounds" example:"3"`
	// Recent turns loaded into the prompt
	HistoryLimit int `yaml:"history_limit" example:"20"`
	// Per-tool execution timeout
	ToolTimeout string `yaml:"tool_timeout" example:"15s"`
	// Compress history into a summary once stored turns exceed this
	SummaryThreshold int `yaml:"summary_threshold" example:"20"`
	// Turns kept verbatim after compression
	SummaryKeepRecent int `yaml:"summary_keep_recent" example:"10"`
}

func (c Chat) ToolTimeoutOrDefault() time.Duration {
	if c.ToolTimeout != "" {
		if d, err := time.ParseDuration(c.ToolTimeout); err == nil && d > 0 {
			return d
		}
	}
	return 15 * time.Second
}

type Scheduler struct {
	// Reminder poll interval
	PollInterval string `yaml:"poll_interval" example:"30s"`
}

func (s Scheduler) PollIntervalOrDefault() time.Duration {
	if s.PollInterval != "" {
		if d, err := time.ParseDuration(s.PollInterval); err == nil && d > 0 {
			return d
		}
	}
	return 30 * time.Second
}

type API struct {
	// Listen address of the status server, empty disables it
	Listen string `yaml:"listen" example:":8080"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

type DB struct {
	// Path to the sqlite database file
	Path string `yaml:"path" example:"data/haru.db"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.DB.Path == "" {
		result.DB.Path = "data/haru.db"
	}
	if result.Chat.MaxToolRounds <= 0 {
		result.Chat.MaxToolRounds = 3
	}
	if result.Chat.HistoryLimit <= 0 {
		result.Chat.HistoryLimit = 20
	}
	if result.Chat.SummaryThreshold <= 0 {
		result.Chat.SummaryThreshold = 20
	}
	if result.Chat.SummaryKeepRecent <= 0 {
		result.Chat.SummaryKeepRecent = 10
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
