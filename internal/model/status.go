package model

// SubmissionStatus represents the state of a mosaic submission
type SubmissionStatus string

const (
	// SubmissionStatusIdle means nothing has been submitted yet
	SubmissionStatusIdle SubmissionStatus = "Idle"

	// SubmissionStatusPending means the request is in flight
	SubmissionStatusPending SubmissionStatus = "Pending"

	// SubmissionStatusSucceeded means the service returned a mosaic
	SubmissionStatusSucceeded SubmissionStatus = "Succeeded"

	// SubmissionStatusFailed means validation, transport or the service failed
	SubmissionStatusFailed SubmissionStatus = "Failed"

	// SubmissionStatusCancelled means the user cancelled the request
	SubmissionStatusCancelled SubmissionStatus = "Cancelled"
)

// String returns the string representation of SubmissionStatus
func (s SubmissionStatus) String() string {
	return string(s)
}

// IsActive returns true while a request is outstanding
func (s SubmissionStatus) IsActive() bool {
	return s == SubmissionStatusPending
}

// IsFinished returns true for terminal states (succeeded, failed or cancelled).
// Terminal states count as the idle baseline for the next submit.
func (s SubmissionStatus) IsFinished() bool {
	return s == SubmissionStatusSucceeded || s == SubmissionStatusFailed || s == SubmissionStatusCancelled
}

// ErrorKind classifies the error shown to the user
type ErrorKind int

const (
	ErrorKindNone ErrorKind = iota
	ErrorKindMissingTarget
	ErrorKindMissingTiles
	ErrorKindTransport
)

// String returns a stable name for logs
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindMissingTarget:
		return "missing_target"
	case ErrorKindMissingTiles:
		return "missing_tiles"
	case ErrorKindTransport:
		return "transport"
	default:
		return "unknown"
	}
}
