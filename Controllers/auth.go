package Controllers

import (
	"BaiXe/Config"
	"BaiXe/Models"
	"BaiXe/middleware"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthController handles admin credential exchange
type AuthController struct {
	DB     *gorm.DB
	Config *Config.AppConfig
}

// NewAuthController creates a new AuthController
func NewAuthController(db *gorm.DB, cfg *Config.AppConfig) *AuthController {
	return &AuthController{DB: db, Config: cfg}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges username+password for a time-limited admin token
func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var input loginRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var admin Models.Admin
	if err := c.DB.Where("username = ?", input.Username).First(&admin).Error; err != nil {
		if Models.IsNotFound(err) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Tài khoản không tồn tại"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(input.Password)); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Mật khẩu sai"})
	}

	token, err := middleware.IssueToken(c.Config.JWTSecret, admin.Username, admin.Role, c.Config.TokenTTL)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server"})
	}

	return ctx.JSON(fiber.Map{"token": token})
}
