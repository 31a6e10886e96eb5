package handlers

import (
	"net/http"

	"github.com/jordanlanch/adcreativelab/pkg/api/errors"
	"github.com/jordanlanch/adcreativelab/pkg/storage"
	"github.com/labstack/echo/v4"
)

// UploadHandler handles creative media uploads
type UploadHandler struct {
	uploader *storage.Uploader
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploader *storage.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// Upload godoc
// @Summary Upload media
// @Description Stores a creative video or image (mp4, webm, mov, jpg, png, gif, webp; up to 100MB) and returns its public URL
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Media file"
// @Success 201 {object} storage.Upload "Stored file"
// @Failure 400 {object} models.ErrorResponse "Missing file"
// @Failure 413 {object} models.ErrorResponse "File too large"
// @Failure 415 {object} models.ErrorResponse "Unsupported media type"
// @Failure 502 {object} models.ErrorResponse "File storage unavailable"
// @Router /uploads [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return errors.BadRequestError(c, "A file is required in the 'file' form field.")
	}

	contentType := file.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		contentType = storage.TypeFromFilename(file.Filename)
	}

	src, err := file.Open()
	if err != nil {
		return errors.InternalError(c, err)
	}
	defer src.Close()

	ctx, cancel := withTimeout(c, uploadTimeout)
	defer cancel()

	upload, err := h.uploader.Upload(ctx, contentType, file.Size, src)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, upload)
}
