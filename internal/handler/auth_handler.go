package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mkurosawa/marketplace-backend/internal/authctx"
	"github.com/mkurosawa/marketplace-backend/internal/model"
	"github.com/mkurosawa/marketplace-backend/internal/service"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionRequest struct {
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

type UserResponse struct {
	UID       string  `json:"uid"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	Verified  bool    `json:"verified"`
	Admin     bool    `json:"admin"`
	Banned    bool    `json:"banned"`
	CreatedAt string  `json:"createdAt"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		UID:       u.UID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Verified:  u.Verified,
		Admin:     u.Admin,
		Banned:    u.Banned,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user, token, err := h.svc.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, AuthResponse{Token: token, User: toUserResponse(user)})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user, token, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, AuthResponse{Token: token, User: toUserResponse(user)})
}

// Session upserts the user row for a provider-verified identity. Called
// by the frontend after an OAuth sign-in completes.
func (h *AuthHandler) Session(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user, err := h.svc.UpsertOAuthUser(c.Request().Context(), uid, req.Email, req.Name, req.AvatarURL)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) Me(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	user, err := h.svc.Profile(c.Request().Context(), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
