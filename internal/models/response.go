package models

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform response shape for every success and error
// response: Status is 1 for success and 0 for failure, Error carries the
// error kind name on failure, and Errors is a field-name to message map for
// validation-style failures.
type Envelope struct {
	Status      int               `json:"status"`
	StatusCode  int               `json:"statusCode"`
	Message     string            `json:"message"`
	Description string            `json:"description,omitempty"`
	Payload     any               `json:"payload,omitempty"`
	Error       string            `json:"error,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// Respond writes a success envelope with the given status code.
func Respond(c *fiber.Ctx, statusCode int, message string, payload any) error {
	return c.Status(statusCode).JSON(Envelope{
		Status:     1,
		StatusCode: statusCode,
		Message:    message,
		Payload:    payload,
	})
}

// RespondError writes a failure envelope. Classified errors keep their kind,
// message, description and field errors; anything else is logged and
// surfaced as a ServerError without internal detail.
func RespondError(c *fiber.Ctx, err error) error {
	appErr := AsAppError(err)
	if appErr == nil {
		appErr = NewInternal(err)
	}

	if appErr.Kind == KindServerError {
		slog.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
		// Do not leak the wrapped cause to the client.
		return c.Status(appErr.StatusCode()).JSON(Envelope{
			Status:     0,
			StatusCode: appErr.StatusCode(),
			Message:    appErr.Message,
			Error:      string(appErr.Kind),
		})
	}

	return c.Status(appErr.StatusCode()).JSON(Envelope{
		Status:      0,
		StatusCode:  appErr.StatusCode(),
		Message:     appErr.Message,
		Description: appErr.Description,
		Error:       string(appErr.Kind),
		Errors:      appErr.Fields,
	})
}
