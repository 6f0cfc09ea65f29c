package storage

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"posture-analyzer/internal/domain/entities"
	"posture-analyzer/internal/pkg/fileutils"
	pe "posture-analyzer/pkg/errors"
	fl "posture-analyzer/pkg/file"
)

// LocalStorage keeps request media in a single temp-files directory. Every
// file gets a fresh random name and is created with O_EXCL, so two requests
// can never share or overwrite a file.
type LocalStorage struct {
	BasePath    string
	MaxFileSize int64
}

func NewLocalStorage(basePath string, maxFileSize int64) *LocalStorage {
	return &LocalStorage{
		BasePath:    basePath,
		MaxFileSize: maxFileSize,
	}
}

func (l *LocalStorage) Dir() string {
	return l.BasePath
}

func (l *LocalStorage) SaveImage(data []byte, ext string) (*entities.TempMediaFile, error) {
	path := filepath.Join(l.BasePath, fl.MakeTempName(string(entities.MediaImage), ext))

	if _, err := fileutils.CreateExclusive(path, bytes.NewReader(data)); err != nil {
		return nil, pe.ErrSaveImage(fmt.Errorf("dosya yazılamadı: %w", err))
	}

	return &entities.TempMediaFile{
		Path:      path,
		Kind:      entities.MediaImage,
		CreatedAt: time.Now(),
	}, nil
}

// SaveUpload persists a multipart video part. A nil header means the client
// sent no file.
func (l *LocalStorage) SaveUpload(fileHeader *multipart.FileHeader) (*entities.TempMediaFile, error) {
	if fileHeader == nil {
		return nil, pe.ErrNoVideo(nil)
	}
	if l.MaxFileSize > 0 && fileHeader.Size > l.MaxFileSize {
		return nil, pe.ErrVideoTooLarge(fileHeader.Size, l.MaxFileSize)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, pe.ErrSaveVideo(fmt.Errorf("dosya açılamadı: %w", err))
	}
	defer src.Close()

	name := fl.MakeTempName(string(entities.MediaVideo), fl.VideoExtension(fileHeader.Filename))
	path := filepath.Join(l.BasePath, name)

	if _, err := fileutils.CreateExclusive(path, src); err != nil {
		return nil, pe.ErrSaveVideo(fmt.Errorf("dosya yazılamadı: %w", err))
	}

	return &entities.TempMediaFile{
		Path:      path,
		Kind:      entities.MediaVideo,
		CreatedAt: time.Now(),
	}, nil
}

// Delete removes a file inside the temp area. Deleting twice is a no-op.
func (l *LocalStorage) Delete(path string) error {
	if err := fileutils.EnsureWithin(l.BasePath, path); err != nil {
		return err
	}
	return fileutils.RemoveIfExists(path)
}
