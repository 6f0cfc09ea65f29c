package constants

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusHealthy   = "Server is running"
)

const DefaultMode = "desk"
