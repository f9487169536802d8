package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ichaly/entschema/log"
	"github.com/ichaly/entschema/metadata"
	"github.com/ichaly/entschema/std"
	"github.com/samber/lo"
)

// Catalog 当前快照的概要
type Catalog struct {
	Version  string    `json:"version"`
	LoadedAt time.Time `json:"loadedAt"`
	Entities []string  `json:"entities"`
}

// SchemaPlugin 通过HTTP暴露实体注册表
type SchemaPlugin struct {
	registry *metadata.Registry
	paths    []string
}

func NewSchemaPlugin(r *metadata.Registry, c *std.Config) *SchemaPlugin {
	return &SchemaPlugin{registry: r, paths: c.Schema.Paths}
}

func (my *SchemaPlugin) Base() string {
	return "/schemas"
}

func (my *SchemaPlugin) Init(r fiber.Router) {
	r.Get("/", std.WrapHandler(my.list))
	r.Post("/lint", std.WrapHandler(my.lint))
	r.Post("/reload", std.WrapHandler(my.reload))
	r.Get("/:name", std.WrapHandler(my.get))
}

func (my *SchemaPlugin) snapshot() (*metadata.Snapshot, error) {
	snap := my.registry.Current()
	if snap == nil {
		return nil, std.NewException(fiber.StatusServiceUnavailable).WithMessage("实体集合尚未加载")
	}
	return snap, nil
}

func (my *SchemaPlugin) list(c *fiber.Ctx) (any, error) {
	snap, err := my.snapshot()
	if err != nil {
		return nil, err
	}
	return Catalog{Version: snap.Version, LoadedAt: snap.LoadedAt, Entities: snap.Names()}, nil
}

func (my *SchemaPlugin) get(c *fiber.Ctx) (any, error) {
	snap, err := my.snapshot()
	if err != nil {
		return nil, err
	}
	name := c.Params("name")
	s, ok := snap.Get(name)
	if !ok {
		return nil, std.NewException(fiber.StatusNotFound).WithMessage("实体不存在").With("name", name)
	}
	std.SetExtension(c, "version", snap.Version)
	return s, nil
}

// lint 校验请求体中的实体文档，不影响当前快照
func (my *SchemaPlugin) lint(c *fiber.Ctx) (any, error) {
	raws, err := metadata.Parse(c.Body(), "request")
	if err != nil {
		return nil, std.NewException(fiber.StatusBadRequest).WithError(err)
	}
	list, err := my.registry.Lint(raws)
	if err != nil {
		return nil, failure(err)
	}
	return list, nil
}

func (my *SchemaPlugin) reload(c *fiber.Ctx) (any, error) {
	snap, err := my.registry.LoadPaths(my.paths...)
	if err != nil {
		log.Warn().Err(err).Msg("手动重新加载失败")
		return nil, failure(err)
	}
	return Catalog{Version: snap.Version, LoadedAt: snap.LoadedAt, Entities: snap.Names()}, nil
}

// failure 将配置问题逐条转换为响应中的错误
func failure(err error) error {
	var ce *metadata.ConfigurationError
	if !errors.As(err, &ce) {
		return std.NewException(fiber.StatusInternalServerError).WithError(err)
	}
	return &std.Failure{
		Status: fiber.StatusBadRequest,
		Exceptions: lo.Map(ce.Issues, func(i metadata.Issue, _ int) *std.Exception {
			return std.NewException(fiber.StatusBadRequest).
				WithMessage(i.Message).
				With("entity", i.Entity).
				With("path", lo.Ternary[any](i.Path == "", nil, i.Path)).
				With("code", i.Code)
		}),
	}
}
