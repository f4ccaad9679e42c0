package api

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

const requestLogFormat = "${time} ${status} ${method} ${path} ${latency} ${ip} user=${user_id}\n"

// RequestLogger writes one access line per request to output.
func RequestLogger(output io.Writer) fiber.Handler {
	return logger.New(requestLogConfig(output))
}

func requestLogConfig(output io.Writer) logger.Config {
	return logger.Config{
		Format:     requestLogFormat,
		TimeFormat: time.RFC3339,
		Output:     output,
		CustomTags: map[string]logger.LogFunc{
			"user_id": func(buffer logger.Buffer, c *fiber.Ctx, _ *logger.Data, _ string) (int, error) {
				user, ok := currentUser(c)
				if !ok {
					return buffer.WriteString("-")
				}
				return buffer.WriteString(user.ID)
			},
		},
	}
}
