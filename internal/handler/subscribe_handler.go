package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mkurosawa/marketplace-backend/internal/mailer"
)

type SubscribeHandler struct {
	mailer *mailer.Mailer
}

func NewSubscribeHandler(m *mailer.Mailer) *SubscribeHandler {
	return &SubscribeHandler{mailer: m}
}

type SubscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe notifies the operator address about a signup. Delivery
// failure degrades to a retryable error, never a crash.
func (h *SubscribeHandler) Subscribe(c echo.Context) error {
	var req SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "a valid email is required"))
	}
	if err := h.mailer.SendSubscriptionNotice(email); err != nil {
		c.Logger().Errorf("subscription notice failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "could not complete signup, please try again"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
