package repositories

import (
	"mime/multipart"

	"posture-analyzer/internal/domain/entities"
)

// TempStorage owns the temp-files area shared by all requests.
type TempStorage interface {
	SaveImage(data []byte, ext string) (*entities.TempMediaFile, error)
	SaveUpload(fileHeader *multipart.FileHeader) (*entities.TempMediaFile, error)
	// Delete removes path; a missing file is not an error.
	Delete(path string) error
	Dir() string
}
