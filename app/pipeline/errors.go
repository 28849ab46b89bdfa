package pipeline

import (
	"errors"
	"fmt"
)

// ConflictError reports a non-update reconstruction against a URL that
// already has a feed. The operator must delete or update explicitly.
type ConflictError struct {
	URL string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting entry for `%s`", e.URL)
}

// ErrNoArchive is returned when live entries are ignored but the web archive
// holds no captures, leaving no remaining entry source.
var ErrNoArchive = errors.New("no web archive exists for this blog; please use the live feed")
