package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
environment: test
server:
  port: 8081
  read_timeout: 5s
  write_timeout: 5s
  shutdown_timeout: 5s
log:
  level: debug
  format: console
  output: stdout
clickhouse:
  host: localhost
  port: 9000
  database: bitcoin
kafka:
  enabled: false
  topic: forecasts
market_data:
  websocket_url: wss://example.test
  symbols:
    - symbol: BTC-USD
      name: Bitcoin
    - symbol: ETH-USD
forecast:
  model_service_url: http://localhost:9001
  model_dir: ./models
  sequence_length: 60
  history_days: 365
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Environment != "test" || cfg.Server.Port != 8081 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Forecast.SequenceLength != 60 {
		t.Fatalf("sequence_length = %d", cfg.Forecast.SequenceLength)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateRejectsEmptyUniverse(t *testing.T) {
	bad := `
environment: test
market_data:
  symbols: []
forecast:
  model_service_url: http://localhost:9001
  model_dir: ./models
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidateRequiresModelService(t *testing.T) {
	bad := `
environment: test
market_data:
  symbols:
    - symbol: BTC-USD
forecast:
  model_dir: ./models
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("MODEL_SERVICE_URL", "http://model:9100")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SYMBOLS", "DOGE-USD, SOL-USD")

	cfg, err := LoadWithEnv(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Forecast.ModelServiceURL != "http://model:9100" {
		t.Fatalf("model_service_url = %s", cfg.Forecast.ModelServiceURL)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("brokers = %v", cfg.Kafka.Brokers)
	}
	if len(cfg.MarketData.Symbols) != 2 || cfg.MarketData.Symbols[0].Symbol != "DOGE-USD" {
		t.Fatalf("symbols = %v", cfg.MarketData.Symbols)
	}
}

func TestSymbolUniverse(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	u := cfg.SymbolUniverse()
	if u["BTC-USD"] != "Bitcoin" {
		t.Fatalf("BTC-USD name = %s", u["BTC-USD"])
	}
	// name defaults to the symbol when unset
	if u["ETH-USD"] != "ETH-USD" {
		t.Fatalf("ETH-USD name = %s", u["ETH-USD"])
	}
}
