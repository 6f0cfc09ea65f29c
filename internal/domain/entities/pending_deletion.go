package entities

import "time"

type PendingDeletion struct {
	Path  string    `json:"path"`
	DueAt time.Time `json:"due_at"`
}
