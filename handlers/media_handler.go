package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/anjiri1684/course_marketplace/media"
	"github.com/anjiri1684/course_marketplace/utils"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const (
	MaxUploadSize  = 50 * 1024 * 1024
	MaxBulkUploads = 10
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg":       true,
	"image/png":        true,
	"image/gif":        true,
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/x-msvideo":  true,
	"video/webm":       true,
	"video/x-matroska": true,
}

// UploadSigner signs direct browser uploads.
type UploadSigner interface {
	SignUpload(now time.Time) (*media.UploadSignature, error)
}

type MediaHandler struct {
	store     media.Store
	signer    UploadSigner
	uploadDir string
}

func NewMediaHandler(store media.Store, uploadDir string) *MediaHandler {
	h := &MediaHandler{store: store, uploadDir: uploadDir}
	if signer, ok := store.(UploadSigner); ok {
		h.signer = signer
	}
	return h
}

func checkUpload(fh *multipart.FileHeader) error {
	mimeType := fh.Header.Get("Content-Type")
	if !allowedMimeTypes[mimeType] {
		return fmt.Errorf("File type not allowed: %s. Only image (JPEG, PNG, GIF) and video (MP4, MOV, AVI, WEBM, MKV) files are allowed!", mimeType)
	}
	if fh.Size > MaxUploadSize {
		return fmt.Errorf("File too large: %s exceeds the 50MB limit", fh.Filename)
	}
	return nil
}

func (h *MediaHandler) save(c *fiber.Ctx, field string, fh *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(h.uploadDir, utils.TempUploadName(field, fh.Filename))
	if err := c.SaveFile(fh, path); err != nil {
		return "", err
	}
	return path, nil
}

func (h *MediaHandler) UploadMedia(c *fiber.Ctx) error {
	if h.store == nil {
		return respondError(c, fiber.StatusInternalServerError, "Media storage is not configured", nil)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "No file uploaded. Make sure you're sending a file with field name 'file'", nil)
	}
	if err := checkUpload(fh); err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	path, err := h.save(c, "file", fh)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Error saving uploaded file", err.Error())
	}

	asset, err := h.store.Upload(c.UserContext(), path)
	removeTemp(path)
	if err != nil {
		log.Printf("🔥 Cloudinary upload error: %v", err)
		return respondError(c, fiber.StatusInternalServerError, "Error uploading file to cloud storage", err.Error())
	}

	return c.JSON(fiber.Map{"success": true, "data": asset})
}

// BulkUploadMedia uploads every file concurrently. One failure fails the
// request but does not cancel the other uploads, and every temp file is removed.
func (h *MediaHandler) BulkUploadMedia(c *fiber.Ctx) error {
	if h.store == nil {
		return respondError(c, fiber.StatusInternalServerError, "Media storage is not configured", nil)
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		return respondError(c, fiber.StatusBadRequest, "No files uploaded. Make sure you're sending files with field name 'files'", nil)
	}
	files := form.File["files"]
	if len(files) > MaxBulkUploads {
		return respondError(c, fiber.StatusBadRequest, fmt.Sprintf("Too many files: at most %d files per upload", MaxBulkUploads), nil)
	}
	for _, fh := range files {
		if err := checkUpload(fh); err != nil {
			return respondError(c, fiber.StatusBadRequest, err.Error(), nil)
		}
	}

	paths := make([]string, 0, len(files))
	defer func() {
		for _, path := range paths {
			removeTemp(path)
		}
	}()
	for _, fh := range files {
		path, err := h.save(c, "files", fh)
		if err != nil {
			return respondError(c, fiber.StatusInternalServerError, "Error saving uploaded file", err.Error())
		}
		paths = append(paths, path)
	}

	ctx := c.UserContext()
	assets := make([]*media.Asset, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			asset, err := h.store.Upload(ctx, path)
			if err != nil {
				return err
			}
			assets[i] = asset
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("🔥 Bulk upload error: %v", err)
		return respondError(c, fiber.StatusInternalServerError, "Bulk upload failed", err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Successfully uploaded %d files", len(assets)),
		"data":    assets,
	})
}

func (h *MediaHandler) DeleteMedia(c *fiber.Ctx) error {
	if h.store == nil {
		return respondError(c, fiber.StatusInternalServerError, "Media storage is not configured", nil)
	}

	publicID, err := url.PathUnescape(c.Params("*"))
	if err != nil || publicID == "" {
		return respondError(c, fiber.StatusBadRequest, "Asset ID is required", nil)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 30*time.Second)
	defer cancel()
	if err := h.store.Delete(ctx, publicID, c.Query("resourceType")); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Error deleting file", err.Error())
	}

	return c.JSON(fiber.Map{"success": true, "message": "Asset deleted successfully"})
}

// GenerateUploadSignature lets the authoring UI upload straight to the CDN.
func (h *MediaHandler) GenerateUploadSignature(c *fiber.Ctx) error {
	if h.signer == nil {
		return respondError(c, fiber.StatusInternalServerError, "Media storage is not configured", nil)
	}
	signature, err := h.signer.SignUpload(time.Now())
	if err != nil {
		if errors.Is(err, media.ErrNotConfigured) {
			return respondError(c, fiber.StatusInternalServerError, "Media storage is not configured", nil)
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to sign upload params", err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "data": signature})
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️ Failed to delete temp file %s: %v", path, err)
	}
}
