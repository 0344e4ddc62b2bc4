// internal/logger/logger.go
//
// 依執行環境建立 zap logger：development/local 使用開發設定（預設 debug），
// 其餘使用正式設定（預設 info）。一律輸出 JSON。

package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 為建立 logger 所需的參數。
type Config struct {
	Environment string
	Level       string
}

func isDevelopment(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "local", "":
		return true
	}
	return false
}

// New 建立 logger 並回傳可於執行期調整的 level。
func New(cfg Config) (*zap.Logger, zap.AtomicLevel, error) {
	level, err := resolveLevel(cfg)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}

	var base zap.Config
	if isDevelopment(cfg.Environment) {
		base = zap.NewDevelopmentConfig()
	} else {
		base = zap.NewProductionConfig()
	}
	base.Encoding = "json"
	base.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	base.Level = level
	base.DisableStacktrace = true

	built, err := base.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("build logger: %w", err)
	}
	return built.With(zap.String("env", cfg.Environment)), level, nil
}

func resolveLevel(cfg Config) (zap.AtomicLevel, error) {
	if strings.TrimSpace(cfg.Level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(cfg.Level); err != nil {
			return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		return zap.NewAtomicLevelAt(parsed), nil
	}
	if isDevelopment(cfg.Environment) {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	}
	return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
}
