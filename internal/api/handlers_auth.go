package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/medlembra/medlembra/internal/models"
	"github.com/medlembra/medlembra/internal/services"
)

const (
	loginAttemptLimit  = 5
	loginAttemptWindow = 15 * time.Minute
)

func (handler *Handler) respondWithSession(c *fiber.Ctx, status int, user models.User) error {
	token, err := handler.buildAuthToken(&user)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    services.BuildUserProfile(user),
	})
}

func (handler *Handler) GoogleLogin(c *fiber.Ctx) error {
	input := googleLoginInput{}
	if err := handler.parseBody(c, &input); err != nil {
		return err
	}

	handler.ensureDependencies()
	user, err := handler.authService.LoginWithGoogle(c.UserContext(), input.IDToken)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return handler.respondWithSession(c, fiber.StatusOK, user)
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := handler.parseBody(c, &input); err != nil {
		return err
	}

	handler.ensureDependencies()
	user, err := handler.authService.Register(c.UserContext(), input.Email, input.Password, input.Name)
	if errors.Is(err, services.ErrAuthCredentialsInvalid) {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return handler.respondWithSession(c, fiber.StatusCreated, user)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	limiterKey := requestLimiterKey(c)
	now := handler.now()
	if handler.loginLimiter.blocked(limiterKey, now) {
		return handler.apiError(c, fiber.StatusTooManyRequests, "error.too_many_attempts")
	}

	input := credentialsInput{}
	if err := handler.parseBody(c, &input); err != nil {
		return err
	}

	handler.ensureDependencies()
	user, err := handler.authService.Login(c.UserContext(), input.Email, input.Password)
	if errors.Is(err, services.ErrAuthCredentialsInvalid) {
		handler.loginLimiter.addFailure(limiterKey, now)
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.loginLimiter.reset(limiterKey)
	return handler.respondWithSession(c, fiber.StatusOK, user)
}

// Logout always succeeds: tokens are stateless and the client drops its copy.
func (handler *Handler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}
