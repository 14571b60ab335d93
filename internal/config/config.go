package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"macross/internal/market"
)

type GatewayConfig struct {
	// Backend selects the broker: "ib" talks to a local TWS/IB Gateway,
	// "alpaca" to Alpaca paper trading.
	Backend string `yaml:"backend" default:"ib" validate:"oneof=ib alpaca"`
	// 7497 is TWS paper; live TWS is 7496, IB Gateway uses 4002/4001.
	Host            string        `yaml:"host" default:"127.0.0.1" validate:"required"`
	Port            int           `yaml:"port" default:"7497" validate:"min=1,max=65535"`
	ClientID        int           `yaml:"client_id" default:"1" validate:"min=0"`
	ConnectAttempts int           `yaml:"connect_attempts" default:"1" validate:"min=1"`
	ConnectDelay    time.Duration `yaml:"connect_delay" default:"5s"`
}

type ContractConfig struct {
	Symbol   string `yaml:"symbol" default:"ES" validate:"required"`
	SecType  string `yaml:"sec_type" default:"FUT" validate:"oneof=FUT STK"`
	Exchange string `yaml:"exchange" default:"CME"`
	Currency string `yaml:"currency" default:"USD"`
	// Futures expiry as YYYYMM; an expired month yields no data.
	ContractMonth string `yaml:"contract_month"`
}

type StrategyConfig struct {
	BarSize     string `yaml:"bar_size" default:"5 mins"`
	Lookback    string `yaml:"lookback" default:"2 D"`
	ShortWindow int    `yaml:"short_window" default:"5" validate:"min=2"`
	LongWindow  int    `yaml:"long_window" default:"20" validate:"gtfield=ShortWindow"`
	OrderSize   int    `yaml:"order_size" default:"1" validate:"min=1"`
}

type RiskConfig struct {
	MaxPosition int           `yaml:"max_position" default:"1" validate:"min=1"`
	Cooldown    time.Duration `yaml:"cooldown"`
	KillSwitch  bool          `yaml:"kill_switch"`
}

type SessionConfig struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

type PathsConfig struct {
	Journal    string `yaml:"journal" default:"decisions.ndjson"`
	Checkpoint string `yaml:"checkpoint" default:"checkpoint.json"`
	// Empty disables the SQLite recorder.
	SQLite string `yaml:"sqlite"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

type AlpacaConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url" default:"https://paper-api.alpaca.markets"`
	Feed      string `yaml:"feed" default:"iex"`
}

type Config struct {
	Gateway           GatewayConfig  `yaml:"gateway"`
	Contract          ContractConfig `yaml:"contract"`
	Strategy          StrategyConfig `yaml:"strategy"`
	Risk              RiskConfig     `yaml:"risk"`
	Session           SessionConfig  `yaml:"session"`
	Paths             PathsConfig    `yaml:"paths"`
	Log               LogConfig      `yaml:"log"`
	Alpaca            AlpacaConfig   `yaml:"alpaca"`
	ReconcileInterval time.Duration  `yaml:"reconcile_interval" default:"15s"`
}

// Load reads the YAML file (missing is fine, defaults apply), fills
// defaults, applies environment overrides, and validates. A .env file in
// the working directory is loaded first; existing variables win.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GATEWAY_HOST"); v != "" {
		cfg.Gateway.Host = v
	}
	if v := os.Getenv("GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("GATEWAY_CLIENT_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.ClientID = id
		}
	}
	if v := os.Getenv("CONTRACT_MONTH"); v != "" {
		cfg.Contract.ContractMonth = v
	}
	if v := os.Getenv("COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Risk.Cooldown = d
		}
	}
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Paths.SQLite = v
	}
}

// Validate enforces the struct tags plus the cross-field rules the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if c.Strategy.ShortWindow >= c.Strategy.LongWindow {
		return fmt.Errorf("strategy.short_window (%d) must be below strategy.long_window (%d): equal or inverted windows degenerate the crossover", c.Strategy.ShortWindow, c.Strategy.LongWindow)
	}
	lookback, err := market.ParseLookback(c.Strategy.Lookback)
	if err != nil {
		return fmt.Errorf("strategy.lookback: %w", err)
	}
	barSpan, err := market.ParseBarSize(c.Strategy.BarSize)
	if err != nil {
		return fmt.Errorf("strategy.bar_size: %w", err)
	}
	if bars := int(lookback / barSpan); bars < c.Strategy.LongWindow {
		return fmt.Errorf("strategy.lookback %q holds %d bars of %q: need at least %d to warm the long SMA", c.Strategy.Lookback, bars, c.Strategy.BarSize, c.Strategy.LongWindow)
	}
	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("reconcile_interval must be positive, got %s", c.ReconcileInterval)
	}
	if c.Gateway.Backend == "alpaca" && (c.Alpaca.APIKey == "" || c.Alpaca.APISecret == "") {
		return fmt.Errorf("APCA_API_KEY_ID and APCA_API_SECRET_KEY are required for the alpaca backend")
	}
	// Order size above max position is allowed: the risk gate clamps the
	// target rather than rejecting the configuration.
	return nil
}

// SeriesLen is the rolling window kept in memory: three long windows,
// enough for the indicators plus buffer.
func (c *Config) SeriesLen() int {
	return 3 * c.Strategy.LongWindow
}
