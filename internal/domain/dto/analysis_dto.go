package dto

import "time"

type AnalyzeImageRequest struct {
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQSkZJRg..."`
	Mode  string `json:"mode,omitempty" example:"desk"`
}

// ErrorResponse documents every error shape; only the fields of the failing
// stage are present.
type ErrorResponse struct {
	Error  string  `json:"error"`
	Detail string  `json:"detail,omitempty"`
	Raw    *string `json:"raw,omitempty"`
	Stderr *string `json:"stderr,omitempty"`
	Code   *int    `json:"code,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type AnalysisRunDTO struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	Mode           string    `json:"mode"`
	Status         string    `json:"status"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	ExitCode       *int      `json:"exit_code,omitempty"`
	TotalFrames    int       `json:"total_frames"`
	ViolationCount int       `json:"violation_count"`
	DurationMs     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

type AnalysisRunListResponse struct {
	Runs []AnalysisRunDTO `json:"runs"`
}
