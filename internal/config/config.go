// internal/config/config.go
//
// 本檔以 viper 讀取環境變數設定；本機 .env 由 cmd/server 以 godotenv 載入至環境變數。

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the service.
type Config struct {
	ServerPort         string        `mapstructure:"SERVER_PORT"`
	AppEnv             string        `mapstructure:"APP_ENV"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	MinOpeningDeposit  int64         `mapstructure:"MIN_OPENING_DEPOSIT"`
	CORSAllowedOrigins []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`
	ShutdownTimeout    time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var keys = []string{
	"SERVER_PORT",
	"APP_ENV",
	"LOG_LEVEL",
	"MIN_OPENING_DEPOSIT",
	"CORS_ALLOWED_ORIGINS",
	"SHUTDOWN_TIMEOUT",
}

// Load 從環境變數讀取設定，未設定者使用預設值。
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("MIN_OPENING_DEPOSIT", 500)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSAllowedOrigins = splitOrigins(cfg.CORSAllowedOrigins)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr 回傳 http.Server 使用的監聽位址。
func (c *Config) Addr() string {
	return ":" + c.ServerPort
}

func (c *Config) validate() error {
	if c.ServerPort == "" {
		return errors.New("SERVER_PORT is required")
	}
	if c.MinOpeningDeposit < 0 {
		return fmt.Errorf("MIN_OPENING_DEPOSIT must be >= 0, got %d", c.MinOpeningDeposit)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0, got %s", c.ShutdownTimeout)
	}
	return nil
}

// splitOrigins 將 "a,b" 這類單一字串展開並去除空白。
func splitOrigins(in []string) []string {
	var out []string
	for _, s := range in {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
