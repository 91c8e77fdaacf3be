package courier

import (
	"errors"
	"fmt"

	"github.com/alexivanou/checkout-address/internal/model"
)

// ErrUpstreamStatus marks a non-2xx answer from the search backend
var ErrUpstreamStatus = errors.New("unexpected status from search backend")

// SearchError describes a failed lookup
type SearchError struct {
	Kind       model.LocationKind
	StatusCode int
	Err        error
}

func (e *SearchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s search failed with status %d: %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s search failed: %v", e.Kind, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}
