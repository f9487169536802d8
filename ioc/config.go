package ioc

import (
	"github.com/ichaly/entschema/log"
	"github.com/ichaly/entschema/std"
	"go.uber.org/fx"
)

// 配置模块
func init() {
	Add(fx.Module("config",
		fx.Provide(
			// filePath由fx.Supply提供
			fx.Annotate(
				std.WithFilePath,
				fx.ResultTags(`group:"konfigOptions"`),
			),
			fx.Annotate(
				std.NewKonfig,
				fx.ParamTags(`group:"konfigOptions"`),
			),
			std.NewConfig,
			NewLogger,
		),
		fx.Invoke(log.SetDefault),
	))
}

// NewLogger 按配置创建日志记录器，配置了文件时写入滚动文件
func NewLogger(c *std.Config) *log.Logger {
	level := log.ParseLevel(c.Log.Level)
	if c.Log.File == "" {
		return log.NewLogger(log.WithLevel(level), log.WithComponent(c.App.Name))
	}
	return log.NewRotateLogger(level,
		log.WithFilename(c.Log.File),
		log.WithMaxSize(c.Log.MaxSize),
		log.WithMaxAge(c.Log.MaxAge),
		log.WithMaxBackups(c.Log.MaxBackups),
		log.UseCompress(c.Log.Compress),
	)
}
