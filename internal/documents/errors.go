package documents

import (
	"errors"
	"fmt"

	"github.com/wolfeidau/clientportal/internal/store"
)

// ErrInvalidDocType is returned for a document type outside the closed set.
var ErrInvalidDocType = errors.New("invalid document type")

// classify wraps err with msg, reporting anything that is not a not-found or conflict
// as store.ErrUpstream.
func classify(msg string, err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) || errors.Is(err, store.ErrUpstream) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, store.ErrUpstream, err)
}
