package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Refresh struct {
		Workers       int           `yaml:"workers"`
		BatchTimeout  time.Duration `yaml:"batch_timeout"`
		StaleDays     int           `yaml:"stale_days"`
		HistoryCap    int           `yaml:"history_cap"`
		AverageWindow int           `yaml:"average_window"`
		PadDays       int           `yaml:"pad_days"`
		Interval      time.Duration `yaml:"interval"` // 0 disables periodic refresh
		Timezone      string        `yaml:"timezone"`
	} `yaml:"refresh"`
	Snapshot struct {
		Backend string `yaml:"backend"` // file or redis
		Path    string `yaml:"path"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Key      string `yaml:"key"`
		} `yaml:"redis"`
	} `yaml:"snapshot"`
	Sources struct {
		RosterURL        string        `yaml:"roster_url"`
		AnnouncementsURL string        `yaml:"announcements_url"`
		EstimatesURL     string        `yaml:"estimates_url"`
		PriceURL         string        `yaml:"price_url"`
		DetailURL        string        `yaml:"detail_url"`
		QuoteURL         string        `yaml:"quote_url"`
		UserAgent        string        `yaml:"user_agent"`
		RequestTimeout   time.Duration `yaml:"request_timeout"`
		MaxRPSPerHost    float64       `yaml:"max_rps_per_host"`
	} `yaml:"sources"`
	Quotes struct {
		StreamInterval time.Duration `yaml:"stream_interval"`
	} `yaml:"quotes"`
	Sink struct {
		Type  string `yaml:"type"` // none, kafka, clickhouse
		Kafka struct {
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic"`
			RequiredAcks int           `yaml:"required_acks"`
			Compression  string        `yaml:"compression"`
			MaxAttempts  int           `yaml:"max_attempts"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"kafka"`
		ClickHouse struct {
			Host        string        `yaml:"host"`
			Port        int           `yaml:"port"`
			Database    string        `yaml:"database"`
			User        string        `yaml:"user"`
			Password    string        `yaml:"password"`
			Table       string        `yaml:"table"`
			DialTimeout time.Duration `yaml:"dial_timeout"`
			ReadTimeout time.Duration `yaml:"read_timeout"`
		} `yaml:"clickhouse"`
	} `yaml:"sink"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("SNAPSHOT_BACKEND"); v != "" {
		c.Snapshot.Backend = v
	}
	if v := os.Getenv("SNAPSHOT_PATH"); v != "" {
		c.Snapshot.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Snapshot.Redis.Addr = v
	}
	if v := os.Getenv("SINK_TYPE"); v != "" {
		c.Sink.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Sink.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Sink.Kafka.Topic = v
	}
	if v := os.Getenv("REFRESH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Refresh.Workers = n
		}
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Refresh.Workers == 0 {
		c.Refresh.Workers = 8
	}
	if c.Refresh.BatchTimeout == 0 {
		c.Refresh.BatchTimeout = 300 * time.Second
	}
	if c.Refresh.StaleDays == 0 {
		c.Refresh.StaleDays = 15
	}
	if c.Refresh.HistoryCap == 0 {
		c.Refresh.HistoryCap = 10
	}
	if c.Refresh.AverageWindow == 0 {
		c.Refresh.AverageWindow = 10
	}
	if c.Refresh.PadDays == 0 {
		c.Refresh.PadDays = 10
	}
	if c.Refresh.Timezone == "" {
		c.Refresh.Timezone = "America/New_York"
	}
	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = "file"
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = "snapshot.json"
	}
	if c.Snapshot.Redis.Key == "" {
		c.Snapshot.Redis.Key = "earningspull:snapshot"
	}
	if c.Sources.RosterURL == "" {
		c.Sources.RosterURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"
	}
	if c.Sources.AnnouncementsURL == "" {
		c.Sources.AnnouncementsURL = "https://www.zacks.com/stock/research/%s/earnings-announcements"
	}
	if c.Sources.EstimatesURL == "" {
		c.Sources.EstimatesURL = "https://www.zacks.com/stock/quote/%s/detailed-estimates"
	}
	if c.Sources.PriceURL == "" {
		c.Sources.PriceURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s"
	}
	if c.Sources.DetailURL == "" {
		c.Sources.DetailURL = "https://www.marketwatch.com/investing/stock/%s"
	}
	if c.Sources.QuoteURL == "" {
		c.Sources.QuoteURL = "http://quote-feed.zacks.com/?t=%s"
	}
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	}
	if c.Sources.RequestTimeout == 0 {
		c.Sources.RequestTimeout = 30 * time.Second
	}
	if c.Sources.MaxRPSPerHost == 0 {
		c.Sources.MaxRPSPerHost = 4
	}
	if c.Quotes.StreamInterval == 0 {
		c.Quotes.StreamInterval = 5 * time.Second
	}
	if c.Sink.Type == "" {
		c.Sink.Type = "none"
	}
	if c.Sink.Kafka.RequiredAcks == 0 {
		c.Sink.Kafka.RequiredAcks = -1
	}
	if c.Sink.Kafka.MaxAttempts == 0 {
		c.Sink.Kafka.MaxAttempts = 3
	}
	if c.Sink.Kafka.Compression == "" {
		c.Sink.Kafka.Compression = "gzip"
	}
	if c.Sink.Kafka.Topic == "" {
		c.Sink.Kafka.Topic = "earnings.reactions"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Snapshot.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("snapshot.backend must be 'file' or 'redis', got '%s'", c.Snapshot.Backend)
	}
	if c.Snapshot.Backend == "redis" && c.Snapshot.Redis.Addr == "" {
		return fmt.Errorf("snapshot.redis.addr is required for redis backend")
	}
	switch c.Sink.Type {
	case "none", "kafka", "clickhouse":
	default:
		return fmt.Errorf("sink.type must be 'none', 'kafka' or 'clickhouse', got '%s'", c.Sink.Type)
	}
	if c.Sink.Type == "kafka" && len(c.Sink.Kafka.Brokers) == 0 {
		return fmt.Errorf("sink.kafka.brokers cannot be empty")
	}
	if c.Sink.Type == "clickhouse" && c.Sink.ClickHouse.Host == "" {
		return fmt.Errorf("sink.clickhouse.host is required")
	}
	if c.Refresh.Workers < 1 {
		return fmt.Errorf("refresh.workers must be positive")
	}
	if _, err := time.LoadLocation(c.Refresh.Timezone); err != nil {
		return fmt.Errorf("refresh.timezone: %w", err)
	}
	return nil
}
