// internal/models/match.go
package models

import "time"

// Match pairs one job with one matched worker. Only the notification fields
// change after creation, and at most once each.
type Match struct {
	ID               int64      `json:"id" db:"id"`
	JobID            int64      `json:"jobId" db:"job_id"`
	WorkerID         int64      `json:"workerId" db:"worker_id"`
	NotificationSent bool       `json:"notificationSent" db:"notification_sent"`
	NotificationTime *time.Time `json:"notificationTime,omitempty" db:"notification_time"`
	WorkerResponded  bool       `json:"workerResponded" db:"worker_responded"`
}

// MatchDetails bundles a match with the worker and job it references.
type MatchDetails struct {
	Match  Match  `json:"match"`
	Worker Worker `json:"worker"`
	Job    Job    `json:"job"`
}
