package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type MatchingConfig struct {
	// Token-set similarity required to attach a listing to an existing
	// canonical product. Strict on purpose: only typos and word-order
	// variance should merge.
	SimilarityThreshold int `yaml:"similarity_threshold"`
}

type DealsConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	WindowDays  int     `yaml:"window_days"`
}

type FeedConfig struct {
	Retailer  string `yaml:"retailer"`
	Category  string `yaml:"category"`
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
	// Legacy feeds arrive Windows-1251 encoded; empty means UTF-8.
	Encoding string `yaml:"encoding"`
}

type ScraperConfig struct {
	MaxConcurrency    int          `yaml:"max_concurrency"`
	RequestsPerMinute int          `yaml:"requests_per_minute"`
	Feeds             []FeedConfig `yaml:"feeds"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type AppConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Matching MatchingConfig `yaml:"matching"`
	Deals    DealsConfig    `yaml:"deals"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &AppConfig{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}
