package model

import (
	"testing"
	"time"
)

func TestSubmission_GetElapsedString(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		elapsed  time.Duration
		expected string
	}{
		{0, "00:00"},
		{30 * time.Second, "00:30"},
		{90 * time.Second, "01:30"},
		{time.Hour, "01:00:00"},
		{3661 * time.Second, "01:01:01"},
	}

	for _, test := range tests {
		sub := &Submission{StartedAt: start, FinishedAt: start.Add(test.elapsed)}
		result := sub.GetElapsedString(start.Add(24 * time.Hour))
		if result != test.expected {
			t.Errorf("GetElapsedString() with elapsed=%v = %s, expected %s", test.elapsed, result, test.expected)
		}
	}
}

func TestSubmission_GetElapsedStringNotStarted(t *testing.T) {
	sub := &Submission{}
	if got := sub.GetElapsedString(time.Now()); got != "—" {
		t.Errorf("Expected placeholder for unstarted submission, got %s", got)
	}
}

func TestSubmission_ElapsedWhileRunning(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	sub := &Submission{StartedAt: start, Status: SubmissionStatusPending}

	if got := sub.Elapsed(start.Add(5 * time.Second)); got != 5*time.Second {
		t.Errorf("Expected 5s elapsed, got %v", got)
	}
}

func TestNextSimulatedProgress(t *testing.T) {
	tests := []struct {
		current  int
		expected int
	}{
		{0, 6},
		{5, 11},
		{50, 53},
		{70, 72},
		{84, 85},
		{85, 85},
		{95, 95},
	}

	for _, test := range tests {
		if got := NextSimulatedProgress(test.current); got != test.expected {
			t.Errorf("NextSimulatedProgress(%d) = %d, expected %d", test.current, got, test.expected)
		}
	}
}

func TestNextSimulatedProgress_ConvergesWithoutPassingCeiling(t *testing.T) {
	p := ProgressAccepted
	for i := 0; i < 500; i++ {
		next := NextSimulatedProgress(p)
		if next > ProgressCeiling {
			t.Fatalf("tick %d advanced progress to %d", i, next)
		}
		if p < ProgressCeiling && next <= p {
			t.Fatalf("tick %d stalled at %d", i, p)
		}
		p = next
	}
	if p != ProgressCeiling {
		t.Errorf("Expected progress to settle at %d, got %d", ProgressCeiling, p)
	}
}
