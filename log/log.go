package log

import (
	"github.com/hatlonely/modelx/log/logger"
)

type Logger = logger.Logger

var defaultLogger logger.Logger

func init() {
	// 默认向 stderr 输出 text 格式日志
	slog, err := logger.NewSLogWithOptions(&logger.SLogOptions{
		Level:  "info",
		Format: "text",
	})
	if err != nil {
		panic("failed to initialize default logger: " + err.Error())
	}
	defaultLogger = slog
}

// Default 未显式配置日志器的组件使用的全局日志器
func Default() logger.Logger {
	return defaultLogger
}

// NewLoggerWithOptions 根据配置创建日志器，options 为 nil 时返回默认日志器
func NewLoggerWithOptions(options *logger.SLogOptions) (logger.Logger, error) {
	if options == nil {
		return Default(), nil
	}
	return logger.NewSLogWithOptions(options)
}
