// Package types provides shared type definitions for cmdai
package types

import (
	"fmt"
	"time"
)

// HistoryEntry represents one query/response exchange with the backend.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
}

// PersistenceError reports a failed write to one of the persisted stores
// (config file or history database). Persistence is best-effort from the
// session's point of view: the error is rendered as a warning and the
// session continues.
type PersistenceError struct {
	Op   string // e.g. "save config", "append history"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
