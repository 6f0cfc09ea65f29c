package file

import (
	"path/filepath"
	"strings"
)

var (
	videoExtensions = []string{".mp4", ".avi", ".mkv", ".mov", ".webm"}
	imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
)

func extIn(filename string, exts []string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return ext, true
		}
	}
	return ext, false
}

func IsVideoFile(filename string) bool {
	_, ok := extIn(filename, videoExtensions)
	return ok
}

func IsImageFile(filename string) bool {
	_, ok := extIn(filename, imageExtensions)
	return ok
}

// VideoExtension returns the upload's extension when it is a known video
// container, ".mp4" otherwise.
func VideoExtension(filename string) string {
	if ext, ok := extIn(filename, videoExtensions); ok {
		return ext
	}
	return ".mp4"
}
