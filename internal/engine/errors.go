package engine

import (
	"errors"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/store"
)

// ErrorKind categorizes the two recoverable failure kinds.
type ErrorKind string

const (
	// DecodeFailure is malformed or unexpected data from the store.
	DecodeFailure ErrorKind = "DECODE_FAILURE"

	// StoreFailure is a transport or permission error from the store.
	StoreFailure ErrorKind = "STORE_FAILURE"
)

// Banner is the single "last error" slot shown to the user: a human
// summary plus the raw technical detail, dismissible by explicit action.
// Both kinds are non-fatal; the affected value keeps its last good state
// and repeated failures simply surface the banner again.
type Banner struct {
	Kind    ErrorKind `json:"kind"`
	Summary string    `json:"summary"`
	Detail  string    `json:"detail"`
}

func bannerFor(f store.Failure) Banner {
	if f.Code == "decode" {
		return decodeBanner(f.Message)
	}
	return Banner{
		Kind:    StoreFailure,
		Summary: "There was a problem with the database.",
		Detail:  f.Code + ": " + f.Message,
	}
}

func decodeBanner(detail string) Banner {
	return Banner{
		Kind:    DecodeFailure,
		Summary: "Received unexpected data. This may be safely ignorable.",
		Detail:  detail,
	}
}

// bannerForError distinguishes decode errors from transport errors that
// arrive as plain errors (e.g. from a failed write).
func bannerForError(err error) Banner {
	var decodeErr *store.DecodeError
	if errors.As(err, &decodeErr) {
		return decodeBanner(err.Error())
	}
	return Banner{
		Kind:    StoreFailure,
		Summary: "There was a problem with the database.",
		Detail:  err.Error(),
	}
}
