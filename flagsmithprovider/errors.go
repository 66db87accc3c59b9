package flagsmithprovider

import "fmt"

// APIError is an unsuccessful response from the Flagsmith API.
type APIError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("flagsmith api error (%s): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("flagsmith api error (%s)", e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
