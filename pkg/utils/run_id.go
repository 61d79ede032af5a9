package utils

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

const runIDLayout = "20060102-150405"

// GenerateRunID names one bot run, e.g. "run-20240301-123005-a3f8e2b1".
// Every journaled order and persisted log line carries it, which is how orphan
// recovery tells a crashed run's orders from the current run's. The timestamp
// prefix keeps ids sortable by start time; the random suffix separates runs
// started within the same second.
func GenerateRunID(startedAt time.Time) string {
	id := uuid.New()
	return "run-" + startedAt.UTC().Format(runIDLayout) + "-" + hex.EncodeToString(id[:4])
}
