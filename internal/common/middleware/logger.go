package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger пишет строку на запрос в формате остальных логов сервиса.
// Пробы здоровья и документация не логируются.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Next: func(c fiber.Ctx) bool {
			return quietPath(c.Path())
		},
		Format:     "[HTTP] ${time} ${status} ${latency} ${method} ${path} ${error}\n",
		TimeFormat: "15:04:05.000",
		TimeZone:   "Local",
	})
}

func quietPath(path string) bool {
	return strings.HasPrefix(path, "/health/") || path == "/docs" || strings.HasPrefix(path, "/docs/")
}
