package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mkurosawa/marketplace-backend/internal/authctx"
	"github.com/mkurosawa/marketplace-backend/internal/service"
)

type AdminHandler struct {
	svc service.AdminService
}

func NewAdminHandler(svc service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type AdminUserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
}

type SetApprovedRequest struct {
	Approved bool `json:"approved"`
}

type StatsResponse struct {
	Visits    int64  `json:"visits"`
	UpdatedAt string `json:"updatedAt"`
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	users, total, err := h.svc.ListUsers(c.Request().Context(), uid, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := AdminUserListResponse{
		Users: make([]UserResponse, 0, len(users)),
		Total: total,
	}
	for i := range users {
		resp.Users = append(resp.Users, toUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) BanUser(c echo.Context) error {
	return h.setUserFlag(c, func(ctx echo.Context, adminUID, target string) error {
		return h.svc.SetBanned(ctx.Request().Context(), adminUID, target, true)
	})
}

func (h *AdminHandler) UnbanUser(c echo.Context) error {
	return h.setUserFlag(c, func(ctx echo.Context, adminUID, target string) error {
		return h.svc.SetBanned(ctx.Request().Context(), adminUID, target, false)
	})
}

func (h *AdminHandler) VerifyUser(c echo.Context) error {
	return h.setUserFlag(c, func(ctx echo.Context, adminUID, target string) error {
		return h.svc.SetVerified(ctx.Request().Context(), adminUID, target, true)
	})
}

func (h *AdminHandler) PromoteUser(c echo.Context) error {
	return h.setUserFlag(c, func(ctx echo.Context, adminUID, target string) error {
		return h.svc.Promote(ctx.Request().Context(), adminUID, target)
	})
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	return h.setUserFlag(c, func(ctx echo.Context, adminUID, target string) error {
		return h.svc.DeleteUser(ctx.Request().Context(), adminUID, target)
	})
}

func (h *AdminHandler) setUserFlag(c echo.Context, op func(echo.Context, string, string) error) error {
	adminUID := authctx.UID(c.Request().Context())
	target := c.Param("uid")
	if target == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid uid"))
	}
	if err := op(c, adminUID, target); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) SetListingActive(c echo.Context) error {
	adminUID := authctx.UID(c.Request().Context())
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.SetListingActive(c.Request().Context(), adminUID, id, req.Active); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) SetListingApproved(c echo.Context) error {
	adminUID := authctx.UID(c.Request().Context())
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req SetApprovedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.SetListingApproved(c.Request().Context(), adminUID, id, req.Approved); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) DeleteListing(c echo.Context) error {
	adminUID := authctx.UID(c.Request().Context())
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	if err := h.svc.DeleteListing(c.Request().Context(), adminUID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) Stats(c echo.Context) error {
	adminUID := authctx.UID(c.Request().Context())
	stats, err := h.svc.Stats(c.Request().Context(), adminUID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, StatsResponse{
		Visits:    stats.Visits,
		UpdatedAt: stats.UpdatedAt.Format(time.RFC3339),
	})
}
