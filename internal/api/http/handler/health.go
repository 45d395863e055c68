package handler

import "github.com/gofiber/fiber/v2"

// Root identifies the API.
func Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true, "msg": "HiREady API is running"})
}

// Health is the liveness probe.
func Health(c *fiber.Ctx) error {
	return c.SendString("OK")
}
