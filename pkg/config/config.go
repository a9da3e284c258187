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
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
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
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	MarketData struct {
		WebSocketURL   string         `yaml:"websocket_url"`
		APIKey         string         `yaml:"api_key"`
		Symbols        []SymbolConfig `yaml:"symbols"`
		ReconnectDelay time.Duration  `yaml:"reconnect_delay"`
		PingInterval   time.Duration  `yaml:"ping_interval"`
		IngestEnabled  bool           `yaml:"ingest_enabled"`
	} `yaml:"market_data"`
	Forecast struct {
		ModelServiceURL string        `yaml:"model_service_url"`
		ModelDir        string        `yaml:"model_dir"`
		Timeout         time.Duration `yaml:"timeout"`
		SequenceLength  int           `yaml:"sequence_length"`
		DefaultDays     int           `yaml:"default_days"`
		HistoryDays     int           `yaml:"history_days"`
		CacheTTL        time.Duration `yaml:"cache_ttl"`
		Redis           struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"forecast"`
}

// SymbolConfig names one instrument of the forecast universe.
type SymbolConfig struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
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
	if v := os.Getenv("MARKET_DATA_API_KEY"); v != "" {
		c.MarketData.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.MarketData.Symbols = c.MarketData.Symbols[:0]
		for _, s := range strings.Split(v, ",") {
			c.MarketData.Symbols = append(c.MarketData.Symbols, SymbolConfig{Symbol: strings.TrimSpace(s)})
		}
	}
	if v := os.Getenv("MODEL_SERVICE_URL"); v != "" {
		c.Forecast.ModelServiceURL = v
	}
	if v := os.Getenv("MODEL_DIR"); v != "" {
		c.Forecast.ModelDir = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	return c, nil
}

// SymbolUniverse returns the configured symbols as a symbol -> name map.
func (c *Config) SymbolUniverse() map[string]string {
	out := make(map[string]string, len(c.MarketData.Symbols))
	for _, s := range c.MarketData.Symbols {
		name := s.Name
		if name == "" {
			name = s.Symbol
		}
		out[s.Symbol] = name
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.MarketData.Symbols) == 0 {
		return fmt.Errorf("market_data.symbols cannot be empty")
	}
	if c.Forecast.ModelServiceURL == "" {
		return fmt.Errorf("forecast.model_service_url is required")
	}
	if c.Forecast.ModelDir == "" {
		return fmt.Errorf("forecast.model_dir is required")
	}
	if c.Forecast.SequenceLength < 0 {
		return fmt.Errorf("forecast.sequence_length must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
