package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"attendance-core/models"
	"attendance-core/pkg/paseto"
	"attendance-core/pkg/password"
	util "attendance-core/pkg/utils"
	"attendance-core/repository"
)

type AuthHandler struct {
	adminRepo repository.AdminRepository
}

func NewAuthHandler(adminRepo repository.AdminRepository) *AuthHandler {
	return &AuthHandler{adminRepo: adminRepo}
}

// Login godoc
// @Summary Admin login
// @Description Verifies the credentials and returns a PASETO token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.AdminLoginPayload true "Login credentials"
// @Success 200 {object} models.LoginSuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse "Invalid username or password"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var payload models.AdminLoginPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
	}
	if errs := util.ValidateStruct(payload); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	admin, err := h.adminRepo.FindByUsername(ctx, payload.Username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to look up admin"})
	}
	if admin == nil || !password.CheckPasswordHash(payload.Password, admin.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}

	token, err := paseto.GenerateToken(admin)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to generate token"})
	}

	return c.JSON(models.LoginSuccessResponse{
		Message: "Login successful",
		Token:   token,
		AdminID: admin.ID.Hex(),
		Role:    admin.Role,
	})
}
