package libs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"storefront/config"
	"storefront/utils"
)

var ErrCloudinaryNotConfigured = errors.New("cloudinary credentials not configured")

// ImageUploader stores product images on Cloudinary.
type ImageUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
	now    func() time.Time
}

// NewImageUploader prefers the individual CLOUDINARY_* credentials and falls
// back to CLOUDINARY_URL.
func NewImageUploader(cfg *config.Config, folder string) (*ImageUploader, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	switch {
	case cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	case cfg.CloudinaryURL != "":
		cld, err = cloudinary.NewFromURL(cfg.CloudinaryURL)
	default:
		return nil, ErrCloudinaryNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &ImageUploader{cld: cld, folder: folder, now: time.Now}, nil
}

// Upload returns the secure URL and the public id needed to delete the image
// later.
func (u *ImageUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, string, error) {
	res, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       utils.ImagePublicID(u.folder, filename, u.now()),
		ResourceType:   "image",
		Transformation: "q_auto,f_auto",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", "", fmt.Errorf("cloudinary upload rejected: %s", res.Error.Message)
	}

	url := res.SecureURL
	if url == "" {
		url = res.URL
	}
	if url == "" {
		return "", "", errors.New("cloudinary returned no image url")
	}
	return url, res.PublicID, nil
}

func (u *ImageUploader) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	res, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary deletion failed: %s", res.Result)
	}
	return nil
}
