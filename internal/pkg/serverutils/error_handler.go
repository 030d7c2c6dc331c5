package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// StatusMapper lets the service layer attach an HTTP status to its errors
// without importing fiber.
type StatusMapper func(err error) (status int, ok bool)

var statusMappers []StatusMapper

// RegisterStatusMapper adds a mapper consulted by ErrorHandlerMiddleware.
func RegisterStatusMapper(m StatusMapper) {
	statusMappers = append(statusMappers, m)
}

func statusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest
	}
	for _, m := range statusMappers {
		if code, ok := m(err); ok {
			return code
		}
	}
	return fiber.StatusInternalServerError
}

// ErrorHandlerMiddleware renders any error returned down the chain as the
// standard envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := statusFor(err)
		resp := ErrorResponse(code, err.Error())
		var ve *ValidationError
		if errors.As(err, &ve) {
			resp.Message = "Invalid request"
			resp.Errors = ve.Fields
		}
		return ctx.Status(code).JSON(resp)
	}
}
