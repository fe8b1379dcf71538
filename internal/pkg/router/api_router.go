package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/BillFox/app/controllers"
	"github.com/ManuelReschke/BillFox/internal/pkg/cache"
	"github.com/ManuelReschke/BillFox/internal/pkg/env"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	h.installHealthCheck(app)

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))

	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "BillFox API",
		})
	})
	webhookController := controllers.NewWebhookController()
	api.Post("/webhooks/payment", webhookController.HandlePaymentWebhook)

	cronController := controllers.NewCronController()
	api.Post("/cron/dispatch", cronController.HandleDispatchRun)
}

// installHealthCheck registers the liveness endpoint. It stays outside the
// rate-limited group so load balancer checks are never throttled.
func (h ApiRouter) installHealthCheck(app *fiber.App) {
	app.Get("/up", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	})
}

// newLimiterStorage backs the rate limiter with Redis so counters survive
// restarts and are shared across instances. Falls back to the limiter's
// in-memory storage when no cache client is configured.
func newLimiterStorage() fiber.Storage {
	cacheClient := cache.GetClient()
	if cacheClient == nil {
		return nil
	}
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	addr := cacheClient.Options().Addr
	if h, p, err := net.SplitHostPort(addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	if p := cacheClient.Options().Password; p != "" {
		password = p
	}
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1, // Separate database for limiter counters (cache uses DB 0)
		Reset:    false,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
