package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"speaksfer/internal/middleware"
)

// WebsocketUpgrade rejects plain HTTP requests to the websocket route.
func (s *Server) WebsocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if s.hub == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "notifications unavailable")
	}
	return c.Next()
}

// WebsocketHandler streams the caller's notifications until either side
// closes the connection.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok || uid == 0 {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration refused", "user_id", uid, "error", err)
			_ = conn.WriteJSON(fiber.Map{"error": err.Error()})
			_ = conn.Close()
			return
		}
		middleware.Logger.Debug("websocket connected", "user_id", uid)

		done := make(chan struct{})
		go client.WritePump(done)
		client.ReadPump()
		close(done)
	})
}
