package storage

import "time"

// SyncRun is one pass of the reconciliation over all ServiceNav companies.
// A run with a nil FinishedAt was interrupted and is resumed by the next sync.
type SyncRun struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
}
