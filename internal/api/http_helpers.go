package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/medlembra/medlembra/internal/services"
)

type serviceErrorResponse struct {
	target error
	status int
	code   string
}

// Order matters: the first matching target wins.
var serviceErrorResponses = []serviceErrorResponse{
	{target: services.ErrWeakPassword, status: fiber.StatusBadRequest, code: "error.weak_password"},
	{target: services.ErrConnectionExists, status: fiber.StatusBadRequest, code: "error.connection_exists"},
	{target: services.ErrSelfConnection, status: fiber.StatusBadRequest, code: "error.self_connection"},
	{target: services.ErrInvalidInput, status: fiber.StatusBadRequest, code: "error.invalid_input"},
	{target: services.ErrAuthCredentialsInvalid, status: fiber.StatusUnauthorized, code: "error.credentials_invalid"},
	{target: services.ErrGoogleTokenInvalid, status: fiber.StatusUnauthorized, code: "error.google_token_invalid"},
	{target: services.ErrNoConnection, status: fiber.StatusForbidden, code: "error.no_connection"},
	{target: services.ErrUserNotFound, status: fiber.StatusNotFound, code: "error.user_not_found"},
	{target: services.ErrMedicationNotFound, status: fiber.StatusNotFound, code: "error.medication_not_found"},
	{target: services.ErrInviteNotFound, status: fiber.StatusNotFound, code: "error.invite_not_found"},
	{target: services.ErrConnectionNotFound, status: fiber.StatusNotFound, code: "error.connection_not_found"},
	{target: services.ErrEmailTaken, status: fiber.StatusConflict, code: "error.email_taken"},
	{target: services.ErrStreakConflict, status: fiber.StatusConflict, code: "error.streak_conflict"},
	{target: services.ErrGoogleLoginDisabled, status: fiber.StatusServiceUnavailable, code: "error.google_disabled"},
}

func (handler *Handler) apiError(c *fiber.Ctx, status int, code string, args ...any) error {
	language := handler.currentLanguage(c)
	message := handler.i18n.Translate(language, code)
	if len(args) > 0 {
		message = handler.i18n.Translatef(language, code, args...)
	}
	return c.Status(status).JSON(fiber.Map{"error": message, "code": code})
}

// respondServiceError maps service sentinels to HTTP errors. Anything
// unrecognized is a store failure and answers 500.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	var malformed *services.MalformedScheduleError
	if errors.As(err, &malformed) {
		return handler.apiError(c, fiber.StatusBadRequest, "error.malformed_schedule", malformed.Value)
	}
	for _, response := range serviceErrorResponses {
		if errors.Is(err, response.target) {
			return handler.apiError(c, response.status, response.code)
		}
	}

	slog.ErrorContext(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return handler.apiError(c, fiber.StatusInternalServerError, "error.internal")
}

func (handler *Handler) parseBody(c *fiber.Ctx, target any) error {
	if err := c.BodyParser(target); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_json")
	}
	return nil
}

// ErrorHandler is the fiber app error handler: it keeps the JSON error shape
// for routing errors and recovered panics.
func (handler *Handler) ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return handler.apiError(c, fiber.StatusNotFound, "error.not_found")
		case fiber.StatusMethodNotAllowed:
			return handler.apiError(c, fiber.StatusMethodNotAllowed, "error.not_found")
		}
		if fiberErr.Code < fiber.StatusInternalServerError {
			return handler.apiError(c, fiberErr.Code, "error.invalid_input")
		}
	}
	slog.ErrorContext(c.UserContext(), "unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
	return handler.apiError(c, fiber.StatusInternalServerError, "error.internal")
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return handler.apiError(c, fiber.StatusNotFound, "error.not_found")
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
