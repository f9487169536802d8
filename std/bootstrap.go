package std

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ichaly/entschema/log"
	"github.com/ichaly/entschema/utl"
	"go.uber.org/fx"
)

var (
	// Version 当前版本号
	Version = "V0.0.0"
	// GitCommit Git提交哈希
	GitCommit = "Unknown"
	// BuildTime 构建时间
	BuildTime = ""
)

// Plugin 插件接口
type Plugin interface {
	// Base 插件基础路径
	Base() string
	// Init 初始化插件
	Init(fiber.Router)
}

// Mount 按基础路径分组注册插件，相同路径共用一个路由组
func Mount(a *fiber.App, plugins ...Plugin) {
	routers := map[string]fiber.Router{"/": a}
	for _, p := range plugins {
		base := utl.NormalizePath(p.Base())
		r, ok := routers[base]
		if !ok {
			r = a.Group(base)
			routers[base] = r
		}
		p.Init(r)
	}
}

// Bootstrap 挂载插件并把服务器的启停交给fx生命周期
func Bootstrap(l fx.Lifecycle, c *Config, a *fiber.App, plugins []Plugin) {
	if BuildTime == "" {
		BuildTime = time.Now().Format("2006-01-02 15:04:05")
	}
	Mount(a, plugins...)

	l.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := a.Listen(c.Addr()); err != nil {
					log.Error().Err(err).Str("app", c.App.Name).Msg("服务启动失败")
				}
			}()
			log.Info().Str("addr", c.Addr()).Str("version", Version).
				Str("commit", GitCommit).Str("build", BuildTime).Msg("服务已启动")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := a.ShutdownWithContext(ctx)
			log.Info().Str("app", c.App.Name).Msg("服务已关闭")
			return err
		},
	})
}
