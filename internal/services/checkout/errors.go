package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrServiceUnavailable = errors.New("payment provider is unreachable")
	ErrGatewayTimeout     = errors.New("payment provider timed out")
)

// UpstreamError is a non-2xx answer from the provider. Its status code and
// structured details are forwarded to the caller as-is.
type UpstreamError struct {
	StatusCode int
	ErrorType  string
	ErrorCodes []string
	RequestID  string
	Body       map[string]any
}

func (e *UpstreamError) Error() string {
	if e.ErrorType != "" {
		return fmt.Sprintf("provider returned status %d: %s [%s]",
			e.StatusCode, e.ErrorType, strings.Join(e.ErrorCodes, ", "))
	}
	return fmt.Sprintf("provider returned status %d", e.StatusCode)
}
