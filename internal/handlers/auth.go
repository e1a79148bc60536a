package handlers

import (
	"errors"
	"strings"

	"github.com/authgate/api/internal/middleware"
	"github.com/authgate/api/internal/models"
	"github.com/authgate/api/internal/services"
	"github.com/authgate/api/pkg/logger"
	"github.com/authgate/api/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

type requestOtpRequest struct {
	Identifier string `json:"identifier"`
}

func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req requestOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.Auth.RequestOTP(normalizeIdentifier(req.Identifier))
	if err != nil {
		return authError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": message})
}

type verifyRequest struct {
	Identifier string `json:"identifier"`
	Otp        string `json:"otp"`
	Password   string `json:"password"`
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.Auth.VerifyAndCreate(normalizeIdentifier(req.Identifier), strings.TrimSpace(req.Otp), req.Password)
	if err != nil {
		return authError(c, err)
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"message": message})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.Auth.Login(normalizeIdentifier(req.Identifier), req.Password)
	if err != nil {
		return authError(c, err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		logger.ErrorWithUser(user.ID.String(), "token_generation_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"token": token, "user": user})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, user)
}

// normalizeIdentifier trims whitespace and lowercases email addresses; phone
// numbers are case-free already.
func normalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if models.KindOfIdentifier(identifier) == models.IdentifierEmail {
		return strings.ToLower(identifier)
	}
	return identifier
}

func authError(c *fiber.Ctx, err error) error {
	var authErr *services.AuthError
	if !errors.As(err, &authErr) {
		logger.Error("auth_internal_error", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "internal error")
	}
	return utils.Error(c, statusForKind(authErr.Kind), authErr.Message)
}

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindMissingInput, services.KindInvalidIdentifier, services.KindWeakPassword:
		return fiber.StatusBadRequest
	case services.KindInvalidCredentials, services.KindInvalidOrExpiredOtp:
		return fiber.StatusUnauthorized
	case services.KindAccountNotVerified:
		return fiber.StatusForbidden
	case services.KindAlreadyRegistered:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
