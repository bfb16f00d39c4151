package submit

import (
	"context"
	"errors"

	"github.com/ytget/mosaic-client/internal/model"
)

// Validation errors, checked in this order before any request is sent
var (
	ErrMissingTarget = errors.New("target image is required")
	ErrMissingTiles  = errors.New("a tiles archive or at least one tile image is required")
)

// ErrSubmissionPending is returned by Submit while a request is in flight
var ErrSubmissionPending = errors.New("a submission is already in progress")

// UnknownErrorMessage is shown when a failure carries no message
const UnknownErrorMessage = "Unknown error"

// ClassifyError maps an error to the kind shown to the user. Cancellation
// is not an error and maps to ErrorKindNone.
func ClassifyError(err error) model.ErrorKind {
	switch {
	case err == nil:
		return model.ErrorKindNone
	case errors.Is(err, ErrMissingTarget):
		return model.ErrorKindMissingTarget
	case errors.Is(err, ErrMissingTiles):
		return model.ErrorKindMissingTiles
	case errors.Is(err, context.Canceled):
		return model.ErrorKindNone
	default:
		return model.ErrorKindTransport
	}
}

// ErrorMessage returns the user-facing message for err
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownErrorMessage
}

func validate(target *model.File, tiles model.TileSource) error {
	if target == nil {
		return ErrMissingTarget
	}
	if !tiles.IsReady() {
		return ErrMissingTiles
	}
	return nil
}
