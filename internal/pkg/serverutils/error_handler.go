package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nitishkumarnitc/HealthBot/internal/service"
	"github.com/nitishkumarnitc/HealthBot/pkg/store"
)

// ErrorHandlerMiddleware converts domain errors into JSON failure responses.
// Each kind maps to one status; messages stay human-readable and never carry
// internal state (canonical answers in particular).
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		status, kind := classify(err)
		return c.Status(status).JSON(ErrorResponse(kind, err.Error()))
	}
}

func classify(err error) (int, string) {
	var (
		invalidTopic *service.InvalidTopicError
		precondition *service.PreconditionMissingError
		noQuiz       *service.NoActiveQuizError
		upstream     *service.UpstreamFailureError
		unavailable  *store.StoreUnavailableError
		fiberErr     *fiber.Error
	)

	switch {
	case errors.As(err, &invalidTopic):
		return fiber.StatusBadRequest, "invalid_topic"
	case errors.As(err, &precondition):
		return fiber.StatusConflict, "precondition_missing"
	case errors.As(err, &noQuiz):
		return fiber.StatusConflict, "no_active_quiz"
	case errors.Is(err, store.ErrSessionNotFound):
		return fiber.StatusNotFound, "session_not_found"
	case errors.As(err, &upstream):
		return fiber.StatusBadGateway, "upstream_failure"
	case errors.As(err, &unavailable):
		return fiber.StatusServiceUnavailable, "store_unavailable"
	case errors.As(err, &fiberErr):
		return fiberErr.Code, "bad_request"
	default:
		return fiber.StatusInternalServerError, "internal_error"
	}
}
