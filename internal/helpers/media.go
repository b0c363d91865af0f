package helpers

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

const (
	ProfilePhotoFolder = "muas/profile"
	PortfolioFolder    = "muas/portfolio"
)

// MediaStore uploads images given as remote URLs, data URIs or local paths.
type MediaStore interface {
	Upload(ctx context.Context, sources []string, folder string) (urls []string, publicIDs []string, err error)
	Delete(ctx context.Context, publicIDs []string)
}

type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	logger *zap.Logger
}

func NewCloudinaryStore(cld *cloudinary.Cloudinary, logger *zap.Logger) *CloudinaryStore {
	return &CloudinaryStore{cld: cld, logger: logger}
}

// Upload stops at the first failure and removes whatever it already uploaded.
func (cs *CloudinaryStore) Upload(ctx context.Context, sources []string, folder string) ([]string, []string, error) {
	var urls, publicIDs []string
	for _, src := range sources {
		if strings.TrimSpace(src) == "" {
			continue
		}
		res, err := cs.cld.Upload.Upload(ctx, src, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{"glamour"},
		})
		if err != nil {
			cs.Delete(ctx, publicIDs)
			return nil, nil, fmt.Errorf("failed to upload image: %w", err)
		}
		if res.Error.Message != "" {
			cs.Delete(ctx, publicIDs)
			return nil, nil, fmt.Errorf("failed to upload image: %s", res.Error.Message)
		}
		urls = append(urls, res.SecureURL)
		publicIDs = append(publicIDs, res.PublicID)
	}
	return urls, publicIDs, nil
}

func (cs *CloudinaryStore) Delete(ctx context.Context, publicIDs []string) {
	for _, id := range publicIDs {
		if _, err := cs.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id}); err != nil {
			cs.logger.Warn("failed to delete uploaded image", zap.String("public_id", id), zap.Error(err))
		}
	}
}
