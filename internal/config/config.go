package config

import (
	"fmt"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

type Config struct {
	APIBaseURL    string        `koanf:"api_base_url"`
	SessionFile   string        `koanf:"session_file"`
	Timeout       time.Duration `koanf:"timeout"`
	StoreName     string        `koanf:"store_name"`
	Currency      string        `koanf:"currency"`
	ScanIdleGap   time.Duration `koanf:"scan_idle_gap"`
	ScanMinLength int           `koanf:"scan_min_length"`
	ScannerDevice string        `koanf:"scanner_device"`
	SpeechCmd     string        `koanf:"speech_cmd"`
	PrintCmd      string        `koanf:"print_cmd"`
	LLMBaseURL    string        `koanf:"llm_base_url"`
	LLMAPIKey     string        `koanf:"llm_api_key"`
	LLMModel      string        `koanf:"llm_model"`
	LogFile       string        `koanf:"log_file"`
	Debug         bool          `koanf:"debug"`
}

func New() (Config, error) {
	cfg := Config{
		APIBaseURL:    "https://mythra-shop-dev.onrender.com",
		SessionFile:   "./shopterm-session.json",
		Timeout:       20 * time.Second,
		StoreName:     "MY POS SHOP",
		Currency:      "₹",
		ScanIdleGap:   500 * time.Millisecond,
		ScanMinLength: 8,
		LogFile:       "./shopterm.log",
		Debug:         false,
	}

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}
