package config

import (
	"bytes"
	_ "embed"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	Redis      RedisConfig      `mapstructure:"redis"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Browser    BrowserConfig    `mapstructure:"browser"`
	Sender     SenderConfig     `mapstructure:"sender"`
	Strategies []StrategyConfig `mapstructure:"strategies"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr    string   `mapstructure:"addr"`
	APIKeys []string `mapstructure:"api_keys"` // empty => auth disabled
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"` // "json" | "console"
}

type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type RateLimitConfig struct {
	RPS   int `mapstructure:"rps"`
	Burst int `mapstructure:"burst"`
}

type BrowserConfig struct {
	UserDataDir    string        `mapstructure:"user_data_dir"` // "" => under os.UserConfigDir()
	ExecPath       string        `mapstructure:"exec_path"`     // "" => auto-discover
	Headless       bool          `mapstructure:"headless"`
	WindowWidth    int           `mapstructure:"window_width"`
	WindowHeight   int           `mapstructure:"window_height"`
	ActionTimeout  time.Duration `mapstructure:"action_timeout"`
	StartupTimeout time.Duration `mapstructure:"startup_timeout"`
}

type SenderConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	MessageDelay time.Duration `mapstructure:"message_delay"` // between contacts
	RenderWait   time.Duration `mapstructure:"render_wait"`   // compose box to appear
	SettleWait   time.Duration `mapstructure:"settle_wait"`   // after compose appears
}

type BreakerConfig struct {
	FailThreshold int `mapstructure:"fail_threshold"`
	OpenForMs     int `mapstructure:"open_for_ms"`
}

type StrategyConfig struct {
	Name      string        `mapstructure:"name"` // click | keystroke | script
	Enabled   bool          `mapstructure:"enabled"`
	TimeoutMs int           `mapstructure:"timeout_ms"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (WASEND_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (WASEND_*)
	v.SetEnvPrefix("WASEND")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
