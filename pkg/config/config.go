package config

import (
	"fmt"
	"os"
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
	Logging struct {
		Level       string `yaml:"level"`
		Format      string `yaml:"format"`
		Output      string `yaml:"output"`
		Aggregation struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic"`
			FlushInterval  time.Duration `yaml:"flush_interval"`
			CountThreshold int           `yaml:"count_threshold"`
		} `yaml:"aggregation"`
	} `yaml:"logging"`
	Analyzer struct {
		WindowSeconds      float64       `yaml:"window_seconds"`
		MinTradesInCluster int           `yaml:"min_trades_in_cluster"`
		MaxWalletDiversity float64       `yaml:"max_wallet_diversity"`
		TxLimit            int           `yaml:"tx_limit"`
		PriceWindowDays    int           `yaml:"price_window_days"`
		CallTimeout        time.Duration `yaml:"call_timeout"`
	} `yaml:"analyzer"`
	Birdeye struct {
		APIKey         string        `yaml:"api_key"`
		BaseURL        string        `yaml:"base_url"`
		RequestsPerSec int           `yaml:"requests_per_sec"`
		Timeout        time.Duration `yaml:"timeout"`
		PageSize       int           `yaml:"page_size"`
		MaxInFlight    int           `yaml:"max_in_flight"`
	} `yaml:"birdeye"`
	HolderScan struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		Chains  []string      `yaml:"chains"`
	} `yaml:"holderscan"`
	Cache struct {
		ReportTTL     time.Duration `yaml:"report_ttl"`
		MemoryMaxSize int           `yaml:"memory_max_size"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port"`
		Database    string        `yaml:"database"`
		User        string        `yaml:"user"`
		Password    string        `yaml:"password"`
		Table       string        `yaml:"table"`
		DialTimeout time.Duration `yaml:"dial_timeout"`
		ReadTimeout time.Duration `yaml:"read_timeout"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled"`
		Capacity     float64 `yaml:"capacity"`
		RefillPerSec float64 `yaml:"refill_per_sec"`
	} `yaml:"rate_limit"`
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

	if v := os.Getenv("BIRDEYE_API_KEY"); v != "" {
		c.Birdeye.APIKey = v
	}
	if v := os.Getenv("HOLDERSCAN_API_KEY"); v != "" {
		c.HolderScan.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Aggregation.Topic == "" {
		c.Logging.Aggregation.Topic = "bundlescope.error-logs"
	}
	if c.Logging.Aggregation.FlushInterval == 0 {
		c.Logging.Aggregation.FlushInterval = 30 * time.Second
	}
	if c.Logging.Aggregation.CountThreshold == 0 {
		c.Logging.Aggregation.CountThreshold = 100
	}
	if c.Analyzer.WindowSeconds == 0 {
		c.Analyzer.WindowSeconds = 2.0
	}
	if c.Analyzer.MinTradesInCluster == 0 {
		c.Analyzer.MinTradesInCluster = 3
	}
	if c.Analyzer.MaxWalletDiversity == 0 {
		c.Analyzer.MaxWalletDiversity = 0.7
	}
	if c.Analyzer.TxLimit == 0 {
		c.Analyzer.TxLimit = 300
	}
	if c.Analyzer.PriceWindowDays == 0 {
		c.Analyzer.PriceWindowDays = 3
	}
	if c.Analyzer.CallTimeout == 0 {
		c.Analyzer.CallTimeout = 30 * time.Second
	}
	if c.Birdeye.BaseURL == "" {
		c.Birdeye.BaseURL = "https://public-api.birdeye.so"
	}
	if c.Birdeye.RequestsPerSec == 0 {
		c.Birdeye.RequestsPerSec = 5
	}
	if c.Birdeye.Timeout == 0 {
		c.Birdeye.Timeout = 30 * time.Second
	}
	if c.Birdeye.PageSize == 0 {
		c.Birdeye.PageSize = 50
	}
	if c.Birdeye.MaxInFlight == 0 {
		c.Birdeye.MaxInFlight = 3
	}
	if c.HolderScan.BaseURL == "" {
		c.HolderScan.BaseURL = "https://api.holderscan.com"
	}
	if c.HolderScan.Timeout == 0 {
		c.HolderScan.Timeout = 15 * time.Second
	}
	if len(c.HolderScan.Chains) == 0 {
		c.HolderScan.Chains = []string{"solana", "ethereum", "base"}
	}
	if c.Cache.ReportTTL == 0 {
		c.Cache.ReportTTL = 10 * time.Minute
	}
	if c.Cache.MemoryMaxSize == 0 {
		c.Cache.MemoryMaxSize = 1000
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Birdeye.APIKey == "" && os.Getenv("BIRDEYE_API_KEY") == "" {
		return fmt.Errorf("birdeye.api_key is required")
	}
	if c.Analyzer.WindowSeconds <= 0 {
		return fmt.Errorf("analyzer.window_seconds must be positive")
	}
	if c.Analyzer.MinTradesInCluster < 2 {
		return fmt.Errorf("analyzer.min_trades_in_cluster must be at least 2")
	}
	if c.Analyzer.MaxWalletDiversity <= 0 || c.Analyzer.MaxWalletDiversity > 1 {
		return fmt.Errorf("analyzer.max_wallet_diversity must be in (0,1]")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
