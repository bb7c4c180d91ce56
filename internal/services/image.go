package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	maxImageBytes  = 8 << 20
	maxImageWidth  = 1200
	maxImageHeight = 1200
	webpQuality    = 82
)

// ObjectUploader stores a blob and returns its public URL
type ObjectUploader interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// BucketUploader writes objects to a Cloud Storage bucket
type BucketUploader struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewBucketUploader wraps a bucket handle obtained from the Firebase app
func NewBucketUploader(bucket *storage.BucketHandle, bucketName string) *BucketUploader {
	return &BucketUploader{bucket: bucket, bucketName: bucketName}
}

func (u *BucketUploader) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	w := u.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucketName, name), nil
}

// ImageService normalizes uploaded product and coach photos to WebP
type ImageService struct {
	uploader ObjectUploader
}

func NewImageService(uploader ObjectUploader) *ImageService {
	return &ImageService{uploader: uploader}
}

// Upload decodes a JPEG, PNG or WebP image, shrinks it to fit the maximum
// dimensions and stores it as WebP under folder/id.
func (s *ImageService) Upload(ctx context.Context, folder, id string, r io.Reader) (string, error) {
	if s == nil || s.uploader == nil {
		return "", fmt.Errorf("image storage not configured")
	}

	raw, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return "", err
	}
	if len(raw) > maxImageBytes {
		return "", NewValidationError("image", "file is larger than 8 MB")
	}

	img, err := decodeImage(raw)
	if err != nil {
		return "", NewValidationError("image", err.Error())
	}

	img = imaging.Fit(img, maxImageWidth, maxImageHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: webpQuality}); err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}

	name := path.Join(folder, fmt.Sprintf("%s-%d.webp", id, time.Now().Unix()))
	return s.uploader.Upload(ctx, name, "image/webp", buf.Bytes())
}

func decodeImage(raw []byte) (image.Image, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	ct := http.DetectContentType(raw)
	switch {
	case strings.Contains(ct, "webp"):
		return webp.Decode(bytes.NewReader(raw))
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "png"):
		return imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	}
	return nil, fmt.Errorf("unsupported image type %s", ct)
}
