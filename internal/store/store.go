// internal/store/store.go
package store

import (
	"context"
	"time"

	"yaya-jobs/internal/models"
)

// DirectoryStore is the port for durable worker, job, and match records.
// Lookups return (nil, nil) when no record exists; an error always means the
// store itself failed.
type DirectoryStore interface {
	// Worker operations
	GetWorker(ctx context.Context, id int64) (*models.Worker, error)
	GetWorkerByPhone(ctx context.Context, phone string) (*models.Worker, error)
	CreateWorker(ctx context.Context, worker models.InsertWorker) (*models.Worker, error)
	UpdateWorkerSkill(ctx context.Context, workerID int64, skill string) (*models.Worker, error)
	UpdateWorkerLocation(ctx context.Context, workerID int64, location string) (*models.Worker, error)
	GetWorkerCount(ctx context.Context, skill, location string) (int, error)
	FindMatchingWorkers(ctx context.Context, skill, location string, limit int) ([]models.Worker, error)

	// Job operations
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	CreateJob(ctx context.Context, job models.InsertJob) (*models.Job, error)
	FindActiveJobs(ctx context.Context, skill, location string) ([]models.Job, error)

	// Match operations
	CreateMatch(ctx context.Context, jobID, workerID int64) (*models.Match, error)
	GetMatchesByJob(ctx context.Context, jobID int64) ([]models.Match, error)
	GetMatchDetails(ctx context.Context, matchID int64) (*models.MatchDetails, error)
	MarkMatchNotified(ctx context.Context, matchID int64, at time.Time) error
}

// SessionStore is the port for dialog session records, keyed by the
// caller-supplied session token. Get returns (nil, nil) when no session
// exists for the token.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.UssdSession, error)
	Create(ctx context.Context, session *models.UssdSession) error
	Update(ctx context.Context, session *models.UssdSession) error
}
