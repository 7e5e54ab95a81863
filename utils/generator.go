package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempUploadName builds a collision-free local name for an uploaded file,
// keeping the original extension so the CDN can detect the media type.
func TempUploadName(field, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if field == "" {
		field = "file"
	}
	return fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixMilli(), uuid.NewString(), ext)
}
