package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	config "github.com/anjiri1684/course_marketplace/configs"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Uploader is the subset of the Cloudinary upload API used here; *uploader.API
// satisfies it.
type Uploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type CloudinaryStore struct {
	uploader  Uploader
	folder    string
	apiKey    string
	apiSecret string
}

// UploadSignature lets a browser upload straight to the CDN folder.
type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"api_key"`
	Folder    string `json:"folder"`
}

func NewCloudinaryStore(cfg config.CloudinaryConfig) (*CloudinaryStore, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cfg.URL != "" {
		cld, err = cloudinary.NewFromURL(cfg.URL)
	} else {
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize cloudinary: %w", err)
	}

	store := NewStore(&cld.Upload, cfg.Folder)
	store.apiKey = cld.Config.Cloud.APIKey
	store.apiSecret = cld.Config.Cloud.APISecret
	log.Println("✅ Cloudinary media store initialized")
	return store, nil
}

func NewStore(u Uploader, folder string) *CloudinaryStore {
	return &CloudinaryStore{uploader: u, folder: folder}
}

func (s *CloudinaryStore) Upload(ctx context.Context, localPath string) (*Asset, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("⚠️ Failed to delete temp file %s: %v", localPath, err)
		}
	}()

	result, err := s.uploader.Upload(ctx, localPath, uploader.UploadParams{
		ResourceType: "auto",
		Folder:       s.folder,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", localPath, err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("upload %s: %s", localPath, result.Error.Message)
	}

	return &Asset{
		AssetID:      result.AssetID,
		PublicID:     result.PublicID,
		URL:          result.URL,
		SecureURL:    result.SecureURL,
		ResourceType: result.ResourceType,
		Format:       result.Format,
		Bytes:        result.Bytes,
	}, nil
}

// UploadBytes stores generated content, such as a certificate PDF, under
// publicID. It returns the secure URL.
func (s *CloudinaryStore) UploadBytes(ctx context.Context, r io.Reader, publicID, resourceType string) (string, error) {
	result, err := s.uploader.Upload(ctx, r, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       s.folder,
		ResourceType: resourceType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", publicID, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", publicID, result.Error.Message)
	}
	return result.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID, resourceType string) error {
	if resourceType == "" {
		resourceType = DefaultDeleteResourceType
	}

	result, err := s.uploader.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", publicID, err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("delete %s: %s", publicID, result.Error.Message)
	}
	return nil
}

func (s *CloudinaryStore) SignUpload(now time.Time) (*UploadSignature, error) {
	if s.apiSecret == "" {
		return nil, ErrNotConfigured
	}

	params, err := api.StructToParams(uploader.UploadParams{Folder: s.folder})
	if err != nil {
		return nil, fmt.Errorf("prepare signature params: %w", err)
	}
	timestamp := now.Unix()
	params.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(params, s.apiSecret)
	if err != nil {
		return nil, fmt.Errorf("sign upload params: %w", err)
	}

	return &UploadSignature{
		Signature: signature,
		Timestamp: timestamp,
		APIKey:    s.apiKey,
		Folder:    s.folder,
	}, nil
}
