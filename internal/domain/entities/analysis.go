package entities

import "time"

// ProcessResult is the captured outcome of one analyzer invocation.
type ProcessResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

type Violation struct {
	Frame int     `json:"frame"`
	Issue string  `json:"issue"`
	Value float64 `json:"value"`
}

type AnalysisResult struct {
	TotalFrames int         `json:"total_frames"`
	Violations  []Violation `json:"violations"`
}
