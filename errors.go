package feature

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingURL is returned by Config.Validate when flags are enabled
	// without a provider URL.
	ErrMissingURL = errors.New("feature: provider url is required when flags are enabled")

	// ErrMissingAPIToken is returned by Config.Validate when flags are enabled
	// without an API token.
	ErrMissingAPIToken = errors.New("feature: api token is required when flags are enabled")
)

// ConnectError is returned by Evaluator.Init when the provider connection
// could not be established.
type ConnectError struct {
	URL string
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("feature: connect to flag provider at %s: %v", e.URL, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
