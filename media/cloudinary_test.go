package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	uploadParams  []uploader.UploadParams
	destroyParams []uploader.DestroyParams
	result        *uploader.UploadResult
	destroyResult *uploader.DestroyResult
	err           error
}

func (f *fakeUploader) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.uploadParams = append(f.uploadParams, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeUploader) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyParams = append(f.destroyParams, params)
	if f.err != nil {
		return nil, f.err
	}
	if f.destroyResult == nil {
		return &uploader.DestroyResult{Result: "ok"}, nil
	}
	return f.destroyResult, nil
}

func tempFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.mp4")
	require.NoError(t, os.WriteFile(path, []byte("video"), 0o600))
	return path
}

func TestUploadReturnsAssetAndRemovesTempFile(t *testing.T) {
	fake := &fakeUploader{result: &uploader.UploadResult{
		AssetID:      "a1",
		PublicID:     "course-uploads/lecture",
		URL:          "http://cdn/lecture.mp4",
		SecureURL:    "https://cdn/lecture.mp4",
		ResourceType: "video",
		Format:       "mp4",
		Bytes:        5,
	}}
	store := NewStore(fake, "course-uploads")
	path := tempFile(t)

	asset, err := store.Upload(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "course-uploads/lecture", asset.PublicID)
	assert.Equal(t, "https://cdn/lecture.mp4", asset.SecureURL)
	assert.Equal(t, "auto", fake.uploadParams[0].ResourceType)
	assert.Equal(t, "course-uploads", fake.uploadParams[0].Folder)
	assert.NoFileExists(t, path)
}

func TestUploadFailureStillRemovesTempFile(t *testing.T) {
	store := NewStore(&fakeUploader{err: errors.New("network down")}, "course-uploads")
	path := tempFile(t)

	_, err := store.Upload(context.Background(), path)
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestUploadSurfacesAPIError(t *testing.T) {
	fake := &fakeUploader{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}
	store := NewStore(fake, "course-uploads")

	_, err := store.Upload(context.Background(), tempFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid image file")
}

func TestDeleteDefaultsToVideo(t *testing.T) {
	fake := &fakeUploader{}
	store := NewStore(fake, "course-uploads")

	require.NoError(t, store.Delete(context.Background(), "course-uploads/lecture", ""))
	require.NoError(t, store.Delete(context.Background(), "course-uploads/cover", "image"))

	assert.Equal(t, "video", fake.destroyParams[0].ResourceType)
	assert.Equal(t, "course-uploads/lecture", fake.destroyParams[0].PublicID)
	assert.Equal(t, "image", fake.destroyParams[1].ResourceType)
}

func TestDeleteSurfacesAPIError(t *testing.T) {
	fake := &fakeUploader{destroyResult: &uploader.DestroyResult{Error: api.ErrorResp{Message: "not found"}}}
	err := NewStore(fake, "course-uploads").Delete(context.Background(), "missing", "")
	assert.ErrorContains(t, err, "not found")
}

func TestSignUpload(t *testing.T) {
	store := NewStore(&fakeUploader{}, "course-uploads")
	_, err := store.SignUpload(time.Now())
	assert.ErrorIs(t, err, ErrNotConfigured)

	store.apiKey = "key"
	store.apiSecret = "secret"
	now := time.Unix(1700000000, 0)

	sig, err := store.SignUpload(now)
	require.NoError(t, err)
	again, err := store.SignUpload(now)
	require.NoError(t, err)

	assert.NotEmpty(t, sig.Signature)
	assert.Equal(t, sig.Signature, again.Signature)
	assert.Equal(t, int64(1700000000), sig.Timestamp)
	assert.Equal(t, "key", sig.APIKey)
	assert.Equal(t, "course-uploads", sig.Folder)
}
