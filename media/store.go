// Package media stores course assets on the CDN.
package media

import (
	"context"
	"errors"
)

const DefaultDeleteResourceType = "video"

var ErrNotConfigured = errors.New("media storage is not configured")

// Asset describes an uploaded file as returned to the client.
type Asset struct {
	AssetID      string `json:"asset_id"`
	PublicID     string `json:"public_id"`
	URL          string `json:"url"`
	SecureURL    string `json:"secure_url"`
	ResourceType string `json:"resource_type"`
	Format       string `json:"format"`
	Bytes        int    `json:"bytes"`
}

// Store uploads local files and deletes remote assets. Upload always removes
// the local file, whether or not the upload succeeded.
type Store interface {
	Upload(ctx context.Context, localPath string) (*Asset, error)
	Delete(ctx context.Context, publicID, resourceType string) error
}
