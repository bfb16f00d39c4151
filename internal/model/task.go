package model

import (
	"fmt"
	"time"
)

// Progress milestones of a submission, in percent
const (
	ProgressIdle     = 0
	ProgressAccepted = 5
	ProgressCeiling  = 85
	ProgressResponse = 95
	ProgressComplete = 100
)

// Submission is the record of the single in-flight (or last finished) request
type Submission struct {
	ID         string
	Status     SubmissionStatus
	Percent    int       // 0 to 100
	LastError  string    // last error message if any
	ErrorKind  ErrorKind // classification of LastError
	Parameters SubmissionParameters
	TileMode   TileSourceKind
	TileCount  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Elapsed returns how long the submission ran, or has been running
func (s *Submission) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if !s.FinishedAt.IsZero() {
		return s.FinishedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

// GetElapsedString returns elapsed time formatted as mm:ss or hh:mm:ss, or "—"
// before the submission starts
func (s *Submission) GetElapsedString(now time.Time) string {
	elapsed := int(s.Elapsed(now).Seconds())
	if s.StartedAt.IsZero() || elapsed < 0 {
		return "—"
	}

	hours := elapsed / 3600
	minutes := (elapsed % 3600) / 60
	seconds := elapsed % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// NextSimulatedProgress advances the synthetic progress counter by one tick.
// It decelerates towards ProgressCeiling and never passes it.
func NextSimulatedProgress(current int) int {
	if current >= ProgressCeiling {
		return current
	}
	step := (ProgressComplete - current) / 15
	if step < 1 {
		step = 1
	}
	next := current + step
	if next > ProgressCeiling {
		next = ProgressCeiling
	}
	return next
}
