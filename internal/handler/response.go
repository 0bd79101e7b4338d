package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mkurosawa/marketplace-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// respondServiceError translates the service error taxonomy to HTTP.
// Store errors surface as a generic failure; internals never leak.
func respondServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthenticated", "sign in required"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "resource not found"))
	case service.IsValidation(err):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "something went wrong"))
	}
}
