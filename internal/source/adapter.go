package source

import (
	"context"
	"fmt"

	"cryptoradar/internal/models"
)

// Adapter fetches and normalizes candidates from one external provider.
// A failed fetch may still return candidates: adapters that substitute
// synthetic fallback data return both the fallback set and the error, so
// the caller can flag the source while keeping the dashboard populated.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Candidate, error)
}

// APIError is a non-2xx response from an upstream source.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

// IsRateLimited reports whether err looks like an upstream rate-limit or
// key-quota rejection (HTTP 429/403).
func IsRateLimited(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	return apiErr.Status == 429 || apiErr.Status == 403
}
