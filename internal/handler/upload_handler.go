package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mkurosawa/marketplace-backend/internal/storage"
)

// maxUploadBytes caps a single image upload at 8 MiB.
const maxUploadBytes = 8 << 20

type UploadHandler struct {
	uploader storage.Uploader
}

func NewUploadHandler(uploader storage.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

type UploadResponse struct {
	URL string `json:"url"`
}

// Upload streams a multipart image to blob storage and returns the
// opaque URL clients attach to listings verbatim.
func (h *UploadHandler) Upload(c echo.Context) error {
	if h.uploader == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "uploads are not configured"))
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "image file is required"))
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "image exceeds size limit"))
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "could not read image"))
	}
	defer src.Close()

	url, err := h.uploader.UploadImage(c.Request().Context(), fh.Filename, src)
	if err != nil {
		c.Logger().Errorf("upload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "upload failed"))
	}
	return c.JSON(http.StatusCreated, UploadResponse{URL: url})
}
