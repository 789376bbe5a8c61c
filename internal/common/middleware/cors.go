package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// CORS пропускает запросы клиента трекера. Пустой список - любые источники (dev).
func CORS(origins string) fiber.Handler {
	allow := []string{"*"}
	if origins = strings.TrimSpace(origins); origins != "" && origins != "*" {
		allow = strings.Split(origins, ",")
		for i := range allow {
			allow[i] = strings.TrimSpace(allow[i])
		}
	}
	return cors.New(cors.Config{
		AllowOrigins: allow,
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	})
}
