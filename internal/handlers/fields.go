package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// PickFields returns only the allow-listed keys of a raw request body. Every
// handler that builds an entity from loosely-typed client input goes through
// this boundary instead of passing the raw payload on.
func PickFields(src map[string]interface{}, allowed []string) map[string]interface{} {
	out := make(map[string]interface{}, len(allowed))
	for _, key := range allowed {
		if value, ok := src[key]; ok {
			out[key] = value
		}
	}
	return out
}

// bindAllowed parses the request body, drops non-allow-listed fields and
// decodes the remainder into dst.
func bindAllowed(c *fiber.Ctx, allowed []string, dst interface{}) error {
	var raw map[string]interface{}
	if err := c.BodyParser(&raw); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	buf, err := json.Marshal(PickFields(raw, allowed))
	if err != nil {
		return fmt.Errorf("failed to re-encode request body: %w", err)
	}
	if err := json.Unmarshal(buf, dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
