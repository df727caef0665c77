package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	syncpkg "attendance-core/sync"
)

// WSUpgrade rejects non-websocket requests before the upgrade handler runs.
func WSUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WSEvents streams table change events to the client until it disconnects.
func WSEvents(hub *syncpkg.Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		hub.ServeConn(conn)
	})
}
