package handler

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"zabibufresh/internal/domain/entity"
	"zabibufresh/internal/domain/repository"
	"zabibufresh/internal/infrastructure/storage"
	"zabibufresh/pkg/errors"
	"zabibufresh/pkg/logger"
	"zabibufresh/pkg/response"
)

type FileHandler struct {
	storageClient  *storage.CloudStorageClient
	fileMetaRepo   repository.FileMetadataRepository
	maxUploadBytes int64
}

var fileHandler *FileHandler

func SetupFileHandler(storageClient *storage.CloudStorageClient, fileMetaRepo repository.FileMetadataRepository, maxUploadBytes int64) {
	fileHandler = &FileHandler{
		storageClient:  storageClient,
		fileMetaRepo:   fileMetaRepo,
		maxUploadBytes: maxUploadBytes,
	}
}

func GetFileHandler() *FileHandler {
	return fileHandler
}

// UploadProductImage accepts a multipart image for a product listing.
// Size and MIME checks run before any byte reaches the bucket.
func (h *FileHandler) UploadProductImage(c echo.Context) error {
	uid := c.Get("uid").(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Error("Error getting file from form: %v", err)
		return response.Error(c, errors.ValidationFailed("An image file is required", err))
	}

	logger.Debug("Received file: %s, size: %d bytes, type: %s", fileHeader.Filename, fileHeader.Size, fileHeader.Header.Get("Content-Type"))

	if fileHeader.Size > h.maxUploadBytes {
		logger.Warn("File too large: %d bytes (max: %d)", fileHeader.Size, h.maxUploadBytes)
		return response.Error(c, errors.ValidationFailed(
			fmt.Sprintf("Image exceeds the %dMB upload limit", h.maxUploadBytes/(1024*1024)), nil))
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.IsAllowedContentType(contentType) {
		logger.Warn("Invalid file type: %s", contentType)
		return response.Error(c, errors.ValidationFailed("Only png, jpeg and webp images are allowed", nil))
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error("Error opening file: %v", err)
		return response.Error(c, errors.Internal("Failed to read uploaded file", err))
	}
	defer src.Close()

	url, err := h.storageClient.UploadFile(c.Request().Context(), src, contentType, "products")
	if err != nil {
		logger.Error("Error from storage client for user %s: %v", uid, err)
		return response.Error(c, errors.WriteFailed("Failed to upload image", err))
	}

	metadata := &entity.FileMetadata{
		URL:        url,
		EntityType: "product",
		UploadedBy: uid,
		Filename:   fileHeader.Filename,
		FileType:   contentType,
		FileSize:   fileHeader.Size,
		CreatedAt:  time.Now(),
	}

	if err := h.fileMetaRepo.Create(c.Request().Context(), metadata); err != nil {
		// The object is already live; a missing metadata record only loses
		// the cascade on delete.
		logger.Error("Failed to save file metadata: %v", err)
	} else {
		logger.Debug("File metadata saved successfully with ID: %s", metadata.ID)
	}

	return response.Created(c, map[string]string{
		"url": url,
	})
}
