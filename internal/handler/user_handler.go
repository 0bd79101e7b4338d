package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mkurosawa/marketplace-backend/internal/service"
)

type UserHandler struct {
	svc service.AuthService
}

func NewUserHandler(svc service.AuthService) *UserHandler {
	return &UserHandler{svc: svc}
}

type PublicUserResponse struct {
	UID       string  `json:"uid"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	Verified  bool    `json:"verified"`
}

// GetPublic serves the subset of a profile safe to show on listing and
// conversation pages.
func (h *UserHandler) GetPublic(c echo.Context) error {
	uid := c.Param("uid")
	if uid == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid uid"))
	}
	user, err := h.svc.Profile(c.Request().Context(), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, PublicUserResponse{
		UID:       user.UID,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Verified:  user.Verified,
	})
}
