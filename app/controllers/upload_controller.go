package controllers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
)

const maxUploadBytes = 5 << 20 // 5 MiB

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// UploadController stores user avatars and product images on the
// configured storage disk (local in dev, S3 in production).
type UploadController struct{}

func NewUploadController() *UploadController {
	return &UploadController{}
}

func (u *UploadController) store(c *ctx.Context, field, dir string) {
	if err := c.R.ParseMultipartForm(maxUploadBytes); err != nil {
		c.BadRequest("Invalid multipart form")
		return
	}

	file, header, err := c.R.FormFile(field)
	if err != nil {
		c.BadRequest(fmt.Sprintf("Missing %q file field", field))
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.BadRequest("File exceeds the 5 MiB limit")
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		c.BadRequest("Unsupported image type")
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		logger.WithCtx(c.Context()).Error("upload read failed", "error", err)
		c.Internal()
		return
	}

	path := fmt.Sprintf("%s/%d_%d%s",
		dir, middleware.UserIDFromCtx(c.Context()), time.Now().UnixNano(), ext)
	if err := storage.Put(path, content); err != nil {
		logger.WithCtx(c.Context()).Error("upload store failed", "error", err, "path", path)
		c.Internal()
		return
	}

	c.Created(map[string]string{"path": path, "url": storage.URL(path)})
}

// Avatar stores a profile picture for the authenticated user.
func (u *UploadController) Avatar(c *ctx.Context) {
	u.store(c, "avatar", "avatars")
}

// ProductImage stores a listing photo for the authenticated seller.
func (u *UploadController) ProductImage(c *ctx.Context) {
	u.store(c, "image", "products")
}
