package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/sentryvision/review-service/internal/auth"
)

// HandlerDeps wires the websocket endpoint
type HandlerDeps struct {
	Registry    *Registry
	Sender      *Sender
	Verifier    auth.TokenVerifier
	Logger      *slog.Logger
	AuthTimeout time.Duration
}

// Handler authenticates the connection-time token, then hands the
// connection to a Session. Rejections close with a distinct code before
// the connection is ever registered.
func Handler(deps HandlerDeps) fiber.Handler {
	authTimeout := deps.AuthTimeout
	if authTimeout == 0 {
		authTimeout = 5 * time.Second
	}

	return websocket.New(func(c *websocket.Conn) {
		token := c.Query("token")
		if token == "" {
			reject(c, CloseMissingCredential, "missing authentication token")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		user, err := deps.Verifier.Verify(ctx, token)
		cancel()
		if err != nil {
			deps.Logger.Warn("websocket authentication failed", slog.Any("error", err))
			reject(c, CloseInvalidCredential, "invalid authentication token")
			return
		}

		session := NewSession(deps.Registry, deps.Sender, deps.Logger, *user)
		session.Run(c)
	})
}

// UpgradeMiddleware gates the endpoint to websocket upgrade requests
func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func reject(c *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = c.Close()
}
