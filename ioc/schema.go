package ioc

import (
	"context"

	"github.com/ichaly/entschema/api"
	"github.com/ichaly/entschema/metadata"
	"github.com/ichaly/entschema/std"
	"go.uber.org/fx"
)

func init() {
	Add(
		fx.Module("schema",
			fx.Provide(NewRegistry),
			fx.Invoke(Watch),
		),
		fx.Provide(
			std.NewFiber,
			fx.Annotate(
				std.NewHealth,
				fx.As(new(std.Plugin)),
				fx.ResultTags(`group:"plugin"`),
			),
			fx.Annotate(
				api.NewSchemaPlugin,
				fx.As(new(std.Plugin)),
				fx.ResultTags(`group:"plugin"`),
			),
		),
		fx.Invoke(fx.Annotate(std.Bootstrap, fx.ParamTags(``, ``, ``, `group:"plugin"`))),
	)
}

// NewRegistry 创建注册表并完成首次加载，首次加载失败时应用无法启动
func NewRegistry(c *std.Config) (*metadata.Registry, error) {
	r := metadata.NewRegistry()
	if _, err := r.LoadPaths(c.Schema.Paths...); err != nil {
		return nil, err
	}
	return r, nil
}

// Watch 开启 schema.watch 后随应用启停监听实体文件
func Watch(l fx.Lifecycle, c *std.Config, r *metadata.Registry) {
	if !c.Schema.Watch {
		return
	}
	w := metadata.NewWatcher(r, c.Schema.Paths, c.Schema.Debounce)
	l.Append(fx.Hook{
		OnStart: func(context.Context) error { return w.Start() },
		OnStop:  func(context.Context) error { return w.Stop() },
	})
}
