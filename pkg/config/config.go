package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PRICELIST"

type Server struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// Store selects where pricing documents live. Root is used by the fs backend,
// Bucket/Prefix/Region/Profile by the s3 backend.
type Store struct {
	Backend string `mapstructure:"backend"`
	Root    string `mapstructure:"root"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
}

type Pricing struct {
	Family string `mapstructure:"family"`
}

type Chat struct {
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Sync struct {
	BaseURL       string `mapstructure:"base_url"`
	OfferCode     string `mapstructure:"offer_code"`
	PricingRegion string `mapstructure:"pricing_region"`
}

type Config struct {
	Server  Server  `mapstructure:"server"`
	Log     Log     `mapstructure:"log"`
	Store   Store   `mapstructure:"store"`
	Pricing Pricing `mapstructure:"pricing"`
	Chat    Chat    `mapstructure:"chat"`
	Sync    Sync    `mapstructure:"sync"`
}

func (s Server) Addr() string {
	return s.Host + ":" + s.Port
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")

	v.SetDefault("store.backend", "fs")
	v.SetDefault("store.root", ".")
	v.SetDefault("store.bucket", "")
	v.SetDefault("store.prefix", "")
	v.SetDefault("store.region", "us-east-1")
	v.SetDefault("store.profile", "")

	v.SetDefault("pricing.family", "verifiedpermissions")

	v.SetDefault("chat.model", "gemini-1.5-flash")
	v.SetDefault("chat.api_key", "")
	v.SetDefault("chat.timeout", time.Duration(0))

	v.SetDefault("sync.base_url", "https://pricing.us-east-1.amazonaws.com")
	v.SetDefault("sync.offer_code", "AmazonVerifiedPermissions")
	v.SetDefault("sync.pricing_region", "us-east-1")
}

// LoadConfig reads the optional config file at path, then applies environment
// overrides. An empty path means defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// unprefixed names used by existing .env files
	_ = v.BindEnv("server.host", "SERVER_HOST", envPrefix+"_SERVER_HOST")
	_ = v.BindEnv("server.port", "SERVER_PORT", envPrefix+"_SERVER_PORT")
	_ = v.BindEnv("chat.api_key", "GEMINI_API_KEY", envPrefix+"_CHAT_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Server.Host == "" || cfg.Server.Port == "" {
		return nil, fmt.Errorf("missing server host or port")
	}

	return &cfg, nil
}
