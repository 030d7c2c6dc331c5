package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware checks an HS256 bearer token signed with secret and stores the
// "sub" claim in ctx.Locals("subject"). An empty secret lets every request through.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Next()
		}

		authHeader := ctx.Get("Authorization")
		tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenStr == "" {
			// SSE clients (EventSource) can't set headers
			tokenStr = ctx.Query("access_token")
		}
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		if sub, err := token.Claims.GetSubject(); err == nil {
			ctx.Locals("subject", sub)
		}
		return ctx.Next()
	}
}
