// Package adlifecycle holds the rules that move an ad creative through its
// pipeline: the transition validator, the expiry sweeper and the derived
// performance metrics. Everything except Sweeper is free of I/O.
package adlifecycle

import (
	"fmt"
	"strings"
)

// Status is a stage of the creative pipeline.
type Status string

const (
	StatusIdea        Status = "idea"
	StatusDevelopment Status = "development"
	StatusProduction  Status = "production"
	StatusTesting     Status = "testing"
	StatusAnalysis    Status = "analysis"
	StatusCompleted   Status = "completed"
)

// DefaultLockDays is the testing window applied when an ad has no lock length.
const DefaultLockDays = 10

// Pipeline lists every status in board order.
var Pipeline = []Status{
	StatusIdea,
	StatusDevelopment,
	StatusProduction,
	StatusTesting,
	StatusAnalysis,
	StatusCompleted,
}

// Valid reports whether s is one of the pipeline statuses.
func (s Status) Valid() bool {
	return s.Index() >= 0
}

// Index returns the position of s in the pipeline, or -1.
func (s Status) Index() int {
	for i, st := range Pipeline {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus normalises and validates a status coming from a request.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q", raw)
	}
	return s, nil
}

// ElementResult is the verdict on a single creative element after analysis.
type ElementResult string

const (
	ElementWorked ElementResult = "worked"
	ElementFailed ElementResult = "failed"
)

// Valid reports whether r is a known element verdict.
func (r ElementResult) Valid() bool {
	return r == ElementWorked || r == ElementFailed
}
