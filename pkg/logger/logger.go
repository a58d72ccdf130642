package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var L *zap.Logger

func init() {
	var err error
	L, err = build(zapcore.InfoLevel)
	if err != nil {
		panic(err)
	}
}

func build(level zapcore.Level) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(level)
	return config.Build(zap.AddCallerSkip(1))
}

// SetLevel 調整全域 logger 等級，level 無法解析時維持原設定
func SetLevel(level string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		L.Warn("invalid log level, keep default", zap.String("level", level), zap.Error(err))
		return
	}
	built, err := build(lvl)
	if err != nil {
		L.Warn("rebuild logger failed", zap.Error(err))
		return
	}
	L = built
}

// WithComponent 回傳帶有 component 欄位的 logger，供 gateway、session、catalog 等使用
func WithComponent(component string) *zap.Logger {
	return L.With(zap.String("component", component))
}

// WithVisitor 回傳帶有 component 與 visitor_id 欄位的 logger
func WithVisitor(component, visitorID string) *zap.Logger {
	return WithComponent(component).With(zap.String("visitor_id", visitorID))
}
