package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mzaraf/vms/config"
)

// serviceName 写入每条日志的 service 字段
const serviceName = "vms"

// NewLogger 根据配置初始化 Zap 日志实例
//
// format=console 输出彩色可读日志（本地开发）；其余取值输出 JSON。
// 堆栈仅在 debug 级别或 error 以上记录。
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.MillisDurationEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zap.NewAtomicLevelAt(level))

	stackLevel := zapcore.ErrorLevel
	if level == zapcore.DebugLevel {
		stackLevel = zapcore.WarnLevel
	}

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(stackLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
		zap.Fields(zap.String("service", serviceName)),
	), nil
}
