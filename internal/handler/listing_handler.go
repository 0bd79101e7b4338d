package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mkurosawa/marketplace-backend/internal/authctx"
	"github.com/mkurosawa/marketplace-backend/internal/model"
	"github.com/mkurosawa/marketplace-backend/internal/repository"
	"github.com/mkurosawa/marketplace-backend/internal/service"
)

type ListingHandler struct {
	svc service.ListingService
}

func NewListingHandler(svc service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

type ListingResponse struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       uint    `json:"price"`
	Category    string  `json:"category"`
	Location    string  `json:"location"`
	SellerUID   string  `json:"sellerUid"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Active      bool    `json:"active"`
	Approved    bool    `json:"approved"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type ListingListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Total    int64             `json:"total"`
}

type ListingRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       uint    `json:"price"`
	Category    string  `json:"category"`
	Location    string  `json:"location"`
	ImageURL    *string `json:"imageUrl"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

func toListingResponse(l *model.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    l.Category,
		Location:    l.Location,
		SellerUID:   l.SellerUID,
		ImageURL:    l.ImageURL,
		Active:      l.Active,
		Approved:    l.Approved,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.Format(time.RFC3339),
	}
}

func (r ListingRequest) toInput() service.ListingInput {
	return service.ListingInput{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Location:    r.Location,
		ImageURL:    r.ImageURL,
	}
}

func (h *ListingHandler) Create(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	var req ListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	listing, err := h.svc.Create(c.Request().Context(), uid, req.toInput())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toListingResponse(listing))
}

func (h *ListingHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	listing, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toListingResponse(listing))
}

// List serves browse/search: q, category and location combine with AND
// semantics over active listings.
func (h *ListingHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	f := repository.ListingFilter{
		Query:    c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Location: c.QueryParam("location"),
		Limit:    limit,
		Offset:   offset,
	}
	listings, total, err := h.svc.Filter(c.Request().Context(), f)
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := ListingListResponse{
		Listings: make([]ListingResponse, 0, len(listings)),
		Total:    total,
	}
	for i := range listings {
		resp.Listings = append(resp.Listings, toListingResponse(&listings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) ListMine(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	listings, err := h.svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		resp = append(resp, toListingResponse(&listings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) Update(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req ListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	listing, err := h.svc.Update(c.Request().Context(), id, uid, req.toInput())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toListingResponse(listing))
}

func (h *ListingHandler) SetActive(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.SetActive(c.Request().Context(), id, uid, req.Active); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ListingHandler) Delete(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id, uid); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
