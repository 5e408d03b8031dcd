package api

import (
	"io"
	"net/http"

	"github.com/avesovich/reporting-with-rss-news/internal/service"
	"github.com/gin-gonic/gin"
)

// ImageController handles article image upload and retrieval.
type ImageController struct {
	images service.ImageService
}

// NewImageController creates the controller.
func NewImageController(images service.ImageService) *ImageController {
	return &ImageController{images: images}
}

// Upload stores a batch of article images and returns their stored
// names for inclusion in a report submission.
func (ctl *ImageController) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		Error(c, http.StatusBadRequest, "multipart form expected")
		return
	}

	headers := form.File["images"]
	uploads := make([]*service.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		uploads = append(uploads, &service.ImageUpload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	paths, err := ctl.images.Upload(currentActor(c), uploads)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"paths": paths})
}

// Get serves one stored image. Responses are never cached; access is
// re-checked on every fetch.
func (ctl *ImageController) Get(c *gin.Context) {
	path, contentType, err := ctl.images.Resolve(currentActor(c), c.Param("filename"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	c.Header("Pragma", "no-cache")
	c.File(path)
}
