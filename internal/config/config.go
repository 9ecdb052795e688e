package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Corpus struct {
		ID  string `yaml:"id"`
		Dir string `yaml:"dir"`
		TTL string `yaml:"ttl"`
	} `yaml:"corpus"`
	Game struct {
		Duration     string `yaml:"duration"`
		Tick         string `yaml:"tick"`
		MaxQuestions int    `yaml:"max_questions"`
	} `yaml:"game"`
	WS struct {
		Rate  float64 `yaml:"rate"`
		Burst int     `yaml:"burst"`
	} `yaml:"ws"`
}

// Load reads YAML config from path. A missing file yields the zero config so
// the service can run on defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Seconds is TTLDuration truncated to whole seconds; non-positive results use the fallback.
func Seconds(raw string, fallback time.Duration) int {
	s := int(TTLDuration(raw, fallback) / time.Second)
	if s <= 0 {
		return int(fallback / time.Second)
	}
	return s
}
