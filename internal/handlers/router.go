package handlers

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/google/uuid"

	"futurisys/attrition-api/internal/metrics"
)

// APIKeyHeader carries the shared secret for the prediction routes.
const APIKeyHeader = "X-API-Key"

// APIKeyFormField carries the same secret on the HTML form.
const APIKeyFormField = "api_key"

type Routes struct {
	Predictions *PredictionHandler
	Meta        *MetaHandler
	UI          *UIHandler
	Metrics     *metrics.Recorder

	// APIKey protects the prediction routes and the form submission when set.
	APIKey         string
	CORSOrigins    string
	RequestTimeout time.Duration
	// AccessLog disables the fiber access logger when false.
	AccessLog bool
}

// SetupRoutes installs the middleware chain and every endpoint on app.
func SetupRoutes(app *fiber.App, r Routes) {
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	if r.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: r.CORSOrigins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + APIKeyHeader,
	}))
	app.Use(r.Metrics.Middleware())

	auth := apiKeyAuth(r.APIKey, "header:"+APIKeyHeader)
	formAuth := apiKeyAuth(r.APIKey, "form:"+APIKeyFormField)
	limited := func(h fiber.Handler) fiber.Handler {
		if r.RequestTimeout <= 0 {
			return h
		}
		return timeout.New(h, r.RequestTimeout)
	}

	// Root route
	app.Get("/", r.Meta.HandleBanner)
	app.Get("/metrics", r.Metrics.Handler())

	r.UI.keyRequired = r.APIKey != ""
	app.Get("/ui", r.UI.HandleForm)
	app.Post("/ui", formAuth, limited(r.UI.HandleSubmit))

	v1 := app.Group("/v1")
	v1.Get("/", r.Meta.HandleRoot)
	v1.Get("/health", r.Meta.HandleHealth)
	v1.Get("/erd", r.Meta.HandleERD)

	predictions := v1.Group("/predictions", auth)
	predictions.Post("/", limited(r.Predictions.HandleCreate))
	predictions.Get("/", limited(r.Predictions.HandleList))
	predictions.Get("/:id", limited(r.Predictions.HandleGet))
	predictions.Delete("/:id", limited(r.Predictions.HandleDelete))

	v1.Get("/outputs", auth, limited(r.Predictions.HandleListOutputs))
}

// apiKeyAuth compares the value found by lookup against key in constant time.
// It lets every request through when key is empty.
func apiKeyAuth(key, lookup string) fiber.Handler {
	expected := []byte(key)
	return keyauth.New(keyauth.Config{
		Next: func(*fiber.Ctx) bool {
			return key == ""
		},
		KeyLookup: lookup,
		Validator: func(_ *fiber.Ctx, given string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(given), expected) == 1 {
				return true, nil
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
		ErrorHandler: func(_ *fiber.Ctx, _ error) error {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or invalid API key")
		},
	})
}
