package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API    APIConfig    `yaml:"api"`
	Auth   AuthConfig   `yaml:"auth"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Speech SpeechConfig `yaml:"speech"`
	Spool  SpoolConfig  `yaml:"spool"`
	Log    LogConfig    `yaml:"log"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

type AuthConfig struct {
	TokenURL     string `yaml:"token_url"`
	APIKey       string `yaml:"api_key"`
	RefreshToken string `yaml:"refresh_token"`
}

type OpenAIConfig struct {
	APIKey   string  `yaml:"api_key"`
	Language string  `yaml:"language"`
	STTModel string  `yaml:"stt_model"`
	TTSModel string  `yaml:"tts_model"`
	TTSVoice string  `yaml:"tts_voice"`
	TTSSpeed float64 `yaml:"tts_speed"`
}

type SpeechConfig struct {
	SampleRate int `yaml:"sample_rate"`
}

type SpoolConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:5000"
	}
	if c.Auth.TokenURL == "" {
		c.Auth.TokenURL = "https://securetoken.googleapis.com/v1/token"
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "es"
	}
	if c.OpenAI.STTModel == "" {
		c.OpenAI.STTModel = "whisper-1"
	}
	if c.OpenAI.TTSModel == "" {
		c.OpenAI.TTSModel = "tts-1"
	}
	if c.OpenAI.TTSVoice == "" {
		c.OpenAI.TTSVoice = "nova"
	}
	if c.OpenAI.TTSSpeed == 0 {
		c.OpenAI.TTSSpeed = 1.0
	}
	if c.Speech.SampleRate == 0 {
		c.Speech.SampleRate = 16000
	}
	if c.Spool.Path == "" {
		c.Spool.Path = "voicesurvey-spool.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
