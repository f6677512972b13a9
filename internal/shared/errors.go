package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrUnauthorized  = fmt.Errorf("missing or expired credential")
	ErrTokenExpired  = fmt.Errorf("access token expired")
	ErrRefreshFailed = fmt.Errorf("token refresh failed")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// Catalog and feed errors
	ErrCatalogUnavailable = fmt.Errorf("catalog request failed")
	ErrSourceUnavailable  = fmt.Errorf("review feed unavailable")
	ErrNoMatch            = fmt.Errorf("no catalog match")
	ErrNotFound           = fmt.Errorf("album not found")
	ErrSyncInFlight       = fmt.Errorf("sync already in progress")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
