package models

import "testing"

func TestJobStateTerminal(t *testing.T) {
	terminal := []JobState{JobCompleted, JobFailed, JobDeleted}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	active := []JobState{JobQueued, JobParsing, JobPreviewReady, JobApproved, JobIndexing}
	for _, s := range active {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}
