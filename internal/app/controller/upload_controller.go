package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/virginiacakes/storefront-backend/internal/errors"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
	"github.com/virginiacakes/storefront-backend/internal/storage"
)

type UploadController struct {
	storage storage.Presigner
}

// NewUploadController builds the controller. A nil presigner answers 503 until S3 is configured.
func NewUploadController(presigner storage.Presigner) *UploadController {
	return &UploadController{
		storage: presigner,
	}
}

type PresignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// PresignProductImage issues an upload URL for catalog images
// POST /api/admin/uploads/presign
func (ctrl *UploadController) PresignProductImage(c *gin.Context) {
	ctrl.presign(c, storage.FolderProducts)
}

// PresignReferenceImage issues an upload URL for custom order reference photos
// POST /api/uploads/presign
func (ctrl *UploadController) PresignReferenceImage(c *gin.Context) {
	ctrl.presign(c, storage.FolderCustomOrders)
}

func (ctrl *UploadController) presign(c *gin.Context, folder string) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.storage == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalConfigError, "Uploads are not configured")
		return
	}

	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presign request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "filename and content_type are required")
		return
	}

	resp, err := ctrl.storage.PresignUpload(c.Request.Context(), req.Filename, req.ContentType, folder)
	if err != nil {
		respondServiceError(c, err, "generate upload url")
		return
	}

	log.Info("Presigned URL generated", map[string]interface{}{
		"folder":       folder,
		"content_type": req.ContentType,
		"key":          resp.Key,
	})

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"upload_url": resp.UploadURL,
		"file_url":   resp.FileURL,
		"key":        resp.Key,
		"expires_at": resp.ExpiresAt,
	})
}
