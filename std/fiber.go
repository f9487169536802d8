package std

import (
	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/ichaly/entschema/log"
	"github.com/ichaly/entschema/utl"
)

// NewFiber 创建并配置一个新的fiber应用实例
func NewFiber(c *Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               c.App.Name,
		DisableStartupMessage: !c.IsDebug(),
		ErrorHandler:          ErrorHandler,
		JSONEncoder:           utl.MarshalJSON,
		JSONDecoder:           utl.UnmarshalJSON,
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(fiberzerolog.New(fiberzerolog.Config{
		Logger: log.Default().Zerolog(),
		Fields: []string{
			fiberzerolog.FieldRequestID,
			fiberzerolog.FieldMethod,
			fiberzerolog.FieldPath,
			fiberzerolog.FieldStatus,
			fiberzerolog.FieldLatency,
			fiberzerolog.FieldError,
		},
	}))
	return app
}
