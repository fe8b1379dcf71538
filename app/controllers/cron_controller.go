package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/BillFox/internal/pkg/database"
	"github.com/ManuelReschke/BillFox/internal/pkg/dispatch"
	"github.com/ManuelReschke/BillFox/internal/pkg/env"
)

// CronController exposes the dispatch batch to an external scheduler. The
// endpoint carries no payload; every call runs one pass over all due items.
type CronController struct {
	driver *dispatch.Driver
}

// NewCronController wires the controller against the global DB handle.
func NewCronController() *CronController {
	return &CronController{driver: dispatch.NewDriverFromDB(database.GetDB())}
}

// NewCronControllerWith creates a controller with an explicit driver.
func NewCronControllerWith(driver *dispatch.Driver) *CronController {
	return &CronController{driver: driver}
}

// HandleDispatchRun runs one dispatch batch and reports aggregate counts.
// The batch itself never fails; errorCount > 0 is still a 200.
func (cc *CronController) HandleDispatchRun(c *fiber.Ctx) error {
	if token := strings.TrimSpace(env.GetEnv("CRON_TOKEN", "")); token != "" {
		if strings.TrimSpace(c.Get("X-Cron-Token")) != token {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_cron_token"})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sum := cc.driver.RunOnce(ctx, time.Now())
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":   true,
		"processed": sum.Processed,
		"errors":    sum.Errors,
	})
}
