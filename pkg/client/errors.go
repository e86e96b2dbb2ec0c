package client

import "fmt"

// APIError is a platform error envelope surfaced as a Go error. Status is
// the HTTP status code; Code is the machine-readable platform code.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsAuthError reports whether the error is a 401 from the platform.
func (e *APIError) IsAuthError() bool { return e.Status == 401 }
