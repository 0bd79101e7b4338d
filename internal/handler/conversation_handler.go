package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mkurosawa/marketplace-backend/internal/authctx"
	"github.com/mkurosawa/marketplace-backend/internal/model"
	"github.com/mkurosawa/marketplace-backend/internal/service"
)

type ConversationHandler struct {
	svc service.ConversationService
}

func NewConversationHandler(svc service.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type ConversationResponse struct {
	ConversationID uint64  `json:"conversationId"`
	BuyerUID       string  `json:"buyerUid"`
	SellerUID      string  `json:"sellerUid"`
	ListingID      *uint64 `json:"listingId,omitempty"`
}

type ConversationSummaryResponse struct {
	ConversationID  uint64  `json:"conversationId"`
	BuyerUID        string  `json:"buyerUid"`
	SellerUID       string  `json:"sellerUid"`
	ListingID       *uint64 `json:"listingId,omitempty"`
	ListingTitle    *string `json:"listingTitle,omitempty"`
	ListingImageURL *string `json:"listingImageUrl,omitempty"`
	UpdatedAt       string  `json:"updatedAt"`
}

type MessageResponse struct {
	ID             uint64 `json:"id"`
	ConversationID uint64 `json:"conversationId"`
	SenderUID      string `json:"senderUid"`
	Body           string `json:"body"`
	Read           bool   `json:"read"`
	CreatedAt      string `json:"createdAt"`
}

type MessageRequest struct {
	Body string `json:"body"`
}

type UnreadResponse struct {
	Unread int64 `json:"unread"`
}

func toMessageResponse(m *model.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderUID:      m.SenderUID,
		Body:           m.Body,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
}

// StartFromListing resolves or creates the thread between the caller
// and the listing's seller.
func (h *ConversationHandler) StartFromListing(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	cv, err := h.svc.StartOrResume(c.Request().Context(), uid, &listingID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ConversationResponse{
		ConversationID: cv.ID,
		BuyerUID:       cv.BuyerUID,
		SellerUID:      cv.SellerUID,
		ListingID:      cv.ListingID,
	})
}

// StartSupport opens (or resumes) the caller's support thread.
func (h *ConversationHandler) StartSupport(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	cv, err := h.svc.StartOrResume(c.Request().Context(), uid, nil)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ConversationResponse{
		ConversationID: cv.ID,
		BuyerUID:       cv.BuyerUID,
		SellerUID:      cv.SellerUID,
	})
}

func (h *ConversationHandler) List(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	convs, err := h.svc.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := make([]ConversationSummaryResponse, 0, len(convs))
	for _, cv := range convs {
		resp = append(resp, ConversationSummaryResponse{
			ConversationID:  cv.ID,
			BuyerUID:        cv.BuyerUID,
			SellerUID:       cv.SellerUID,
			ListingID:       cv.ListingID,
			ListingTitle:    cv.ListingTitle,
			ListingImageURL: cv.ListingImageURL,
			UpdatedAt:       cv.UpdatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	msgs, err := h.svc.ListMessages(c.Request().Context(), convID, uid, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		resp = append(resp, toMessageResponse(&msgs[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationHandler) PostMessage(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	msg, err := h.svc.PostMessage(c.Request().Context(), convID, uid, req.Body)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toMessageResponse(msg))
}

func (h *ConversationHandler) MarkRead(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	if err := h.svc.MarkRead(c.Request().Context(), convID, uid); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ConversationHandler) Unread(c echo.Context) error {
	uid := authctx.UID(c.Request().Context())
	n, err := h.svc.CountUnread(c.Request().Context(), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, UnreadResponse{Unread: n})
}
