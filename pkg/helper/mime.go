package helper

import (
	"path/filepath"
	"regexp"
	"strings"
)

var dataURIPrefix = regexp.MustCompile(`^data:([A-Za-z0-9.+/-]*)((?:;[^,;]*)*),`)

func GetMimeTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".avi":
		return "video/avi"
	case ".mkv":
		return "video/mkv"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

// ExtensionFromMime maps an image MIME type to the file extension the
// analyzer expects. Unknown types fall back to ".jpg".
func ExtensionFromMime(mime string) string {
	switch strings.ToLower(mime) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// StripDataURI removes a leading "data:<mime>;base64," prefix and returns the
// remaining payload together with the declared MIME type (empty if none).
func StripDataURI(s string) (payload, mime string) {
	s = strings.TrimSpace(s)
	m := dataURIPrefix.FindStringSubmatchIndex(s)
	if m == nil {
		return s, ""
	}
	return s[m[1]:], s[m[2]:m[3]]
}
