package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrEmailTaken         = fmt.Errorf("email already registered")
	ErrSessionExpired     = fmt.Errorf("session expired")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Store errors
	ErrTuneNotFound      = fmt.Errorf("tune not found")
	ErrRecordingNotFound = fmt.Errorf("recording not found")
	ErrUserNotFound      = fmt.Errorf("user not found")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrVideoNotFound      = fmt.Errorf("video not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidID       = fmt.Errorf("invalid identifier")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotConfirmed    = fmt.Errorf("action not confirmed")
)
