package internal

import (
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotate 日志轮转配置
type Rotate struct {
	Filename   string
	MaxSize    int // MB
	MaxAge     int // 天
	MaxBackups int
	LocalTime  bool
	Compress   bool
}

// NewRotateLogger 基于lumberjack创建轮转日志
func NewRotateLogger(r *Rotate) zerolog.Logger {
	w := &lumberjack.Logger{
		Filename:   r.Filename,
		MaxSize:    r.MaxSize,
		MaxAge:     r.MaxAge,
		MaxBackups: r.MaxBackups,
		LocalTime:  r.LocalTime,
		Compress:   r.Compress,
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// DefaultRotate 默认轮转配置
func DefaultRotate() *Rotate {
	return &Rotate{
		Filename:   "logs/entschema.log",
		MaxSize:    50,
		MaxAge:     7,
		MaxBackups: 3,
		LocalTime:  true,
	}
}
