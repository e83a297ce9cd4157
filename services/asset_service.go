package services

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func uploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "./uploads"
}

// SaveProfileImage stores an uploaded image under the uploads directory
// with a fresh uuid name and returns the reference URL. Returns "" when
// the request carries no file for the field; callers keep the previous
// reference in that case.
func SaveProfileImage(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		// Not an absent file: the multipart body itself is broken.
		return "", err
	}

	if err := os.MkdirAll(uploadDir(), 0755); err != nil {
		return "", err
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(uploadDir(), name)); err != nil {
		return "", err
	}

	return "/uploads/" + name, nil
}
