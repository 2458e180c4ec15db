package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"

	"inventory_back_end/internal/icons"
)

// IconAssets sert les glyphes des icônes (SVG) depuis le bucket MinIO.
// Les objets sont rangés sous icons/<nom>.svg.
type IconAssets struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

func NewIconAssets(client *minio.Client, bucket string, ttl time.Duration) *IconAssets {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IconAssets{client: client, bucket: bucket, ttl: ttl}
}

func iconObject(name string) string {
	return "icons/" + name + ".svg"
}

// Upload dépose le glyphe d'une icône connue.
func (a *IconAssets) Upload(ctx context.Context, name string, r io.Reader, size int64) error {
	if _, ok := icons.Lookup(name); !ok {
		return fmt.Errorf("icône inconnue: %s", name)
	}
	_, err := a.client.PutObject(ctx, a.bucket, iconObject(name), r, size,
		minio.PutObjectOptions{ContentType: "image/svg+xml"})
	return err
}

// SignedURL génère une URL signée pour le glyphe, avec repli sur l'icône par défaut.
func (a *IconAssets) SignedURL(ctx context.Context, name string) (string, error) {
	glyph := icons.Resolve(name)
	presignedURL, err := a.client.PresignedGetObject(ctx, a.bucket, iconObject(glyph.Name), a.ttl, make(url.Values))
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}
