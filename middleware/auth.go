package middleware

import (
	"strings"
	"time"

	"BaiXe/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// AdminClaims is the payload of a panel token: who, and with what role.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a fresh admin token for username, valid for ttl.
func IssueToken(secret, username, role string, ttl time.Duration) (string, error) {
	claims := AdminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyAdmin gates a route behind a bearer token carrying the admin
// role. The admin username is stored in locals for handlers that stamp
// actor fields.
func VerifyAdmin(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Không có token",
			})
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token không hợp lệ",
			})
		}

		claims, ok := token.Claims.(*AdminClaims)
		if !ok || claims.Role != Models.RoleAdmin {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token không hợp lệ",
			})
		}

		c.Locals("admin", claims.Subject)
		return c.Next()
	}
}
