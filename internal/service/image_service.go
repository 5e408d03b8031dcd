package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/avesovich/reporting-with-rss-news/internal/policy"
)

// Image upload limits.
const (
	MaxImagesPerUpload = 10
	MaxImageSize       = 5 << 20 // 5 MiB per file
)

// imageContentTypes maps the accepted extensions to their media types.
var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ImageUpload is one file in an upload batch.
type ImageUpload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// ImageService stores and serves article images on the local disk.
// Stored names are random, so a filename never leaks editor input.
type ImageService interface {
	Upload(actor *policy.Actor, files []*ImageUpload) ([]string, error)
	// Resolve returns the on-disk path and content type of a stored
	// image. Traversal attempts and unknown names read as NotFound.
	Resolve(actor *policy.Actor, filename string) (string, string, error)
}

type imageService struct {
	dir    string
	policy *policy.Policy
}

// NewImageService creates the service rooted at dir, creating it if
// missing.
func NewImageService(dir string, pol *policy.Policy) (ImageService, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &imageService{dir: dir, policy: pol}, nil
}

func randomImageName(ext string) (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate image name: %w", err)
	}
	return hex.EncodeToString(buf) + ext, nil
}

func (s *imageService) Upload(actor *policy.Actor, files []*ImageUpload) ([]string, error) {
	if err := s.policy.CanUploadImages(actor.ID); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, model.NewValidationError("images", "at least one image is required")
	}
	if len(files) > MaxImagesPerUpload {
		return nil, model.NewValidationError("images", "at most 10 images per upload")
	}

	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Filename))
		if _, ok := imageContentTypes[ext]; !ok {
			return nil, model.NewValidationError("images",
				"only jpeg, png, gif and webp images are accepted")
		}
		if f.Size > MaxImageSize {
			return nil, model.NewValidationError("images", "images must be at most 5 MB")
		}
	}

	stored := make([]string, 0, len(files))
	for _, f := range files {
		name, err := randomImageName(strings.ToLower(filepath.Ext(f.Filename)))
		if err != nil {
			return nil, err
		}
		if err := s.store(f, name); err != nil {
			return nil, err
		}
		stored = append(stored, name)
	}
	return stored, nil
}

func (s *imageService) store(f *ImageUpload, name string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, MaxImageSize)); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}

func (s *imageService) Resolve(actor *policy.Actor, filename string) (string, string, error) {
	if err := s.policy.CanViewImages(actor.ID); err != nil {
		return "", "", err
	}

	// Strip any path components before touching the filesystem.
	filename = filepath.Base(filename)
	contentType, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", "", model.ErrNotFound
	}

	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", "", model.ErrNotFound
	}
	return path, contentType, nil
}
