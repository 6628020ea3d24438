package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Middleware counts requests by matched route pattern, so path parameters do
// not explode the label space. Errors from later handlers are rendered here
// through the app error handler.
func (r *Recorder) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r == nil {
			return c.Next()
		}

		start := time.Now()
		if err := c.Next(); err != nil {
			// Render the error now so the recorded status matches the response.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		route := c.Route().Path
		method := c.Method()
		r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
		r.httpRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		return nil
	}
}
