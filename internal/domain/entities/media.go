package entities

import "time"

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// TempMediaFile is a stored upload owned by exactly one request until it is
// handed to cleanup.
type TempMediaFile struct {
	Path      string    `json:"path"`
	Kind      MediaKind `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}
