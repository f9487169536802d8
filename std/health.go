package std

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Health struct {
	started time.Time
}

func NewHealth() *Health {
	return &Health{started: time.Now()}
}

func (my *Health) Base() string {
	return "/health"
}

func (my *Health) Init(r fiber.Router) {
	r.Get("/", WrapHandler(my.check))
}

func (my *Health) check(c *fiber.Ctx) (any, error) {
	return fiber.Map{
		"status":    "ok",
		"version":   Version,
		"timestamp": time.Now().Unix(),
		"uptime":    time.Since(my.started).Seconds(),
	}, nil
}
