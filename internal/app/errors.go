package app

import (
	"errors"
	"fmt"
)

var (
	errMissingField = errors.New("missing required field")
	errInvalidField = errors.New("invalid field")
)

// ImportDataError reports a malformed feed record. It aborts the batch.
type ImportDataError struct {
	Kind     string // "accommodation" | "review"
	Index    int    // position in the feed array
	RecordID string
	Field    string
	Err      error
}

func (e *ImportDataError) Error() string {
	msg := fmt.Sprintf("%s record #%d", e.Kind, e.Index)
	if e.RecordID != "" {
		msg += fmt.Sprintf(" (id=%s)", e.RecordID)
	}
	if e.Field != "" {
		msg += ": " + e.Field
	}
	return msg + ": " + e.Err.Error()
}

func (e *ImportDataError) Unwrap() error { return e.Err }

// ReferentialGap is a review whose accommodation is not in the database.
// The review is skipped; the batch continues.
type ReferentialGap struct {
	ReviewID        string
	AccommodationID string
}

func (g ReferentialGap) Error() string {
	return fmt.Sprintf("accommodation %s not found for review %s", g.AccommodationID, g.ReviewID)
}
