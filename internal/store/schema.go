// internal/store/schema.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"yaya-jobs/internal/models"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS workers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL UNIQUE,
		skill TEXT NOT NULL,
		location TEXT NOT NULL,
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id BIGSERIAL PRIMARY KEY,
		contact_phone TEXT NOT NULL,
		skill_required TEXT NOT NULL,
		location TEXT NOT NULL,
		daily_rate INTEGER NOT NULL,
		project_duration TEXT NOT NULL,
		additional_notes TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id BIGSERIAL PRIMARY KEY,
		job_id BIGINT NOT NULL REFERENCES jobs(id),
		worker_id BIGINT NOT NULL REFERENCES workers(id),
		notification_sent BOOLEAN NOT NULL DEFAULT FALSE,
		notification_time TIMESTAMPTZ,
		worker_responded BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_workers_skill_location
		ON workers (skill, location) WHERE is_available`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_skill_location
		ON jobs (skill_required, location) WHERE is_active`,
	`CREATE INDEX IF NOT EXISTS idx_matches_job ON matches (job_id)`,
}

// EnsureSchema creates the directory tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Seed inserts sample workers and one job when the directory is empty.
// Intended for development environments only.
func Seed(ctx context.Context, dir DirectoryStore) error {
	existing, err := dir.GetWorkerByPhone(ctx, "0711222333")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	seedWorkers := []models.InsertWorker{
		{Name: "David Odhiambo", Phone: "0711222333", Skill: "Mason", Location: "Pipeline", IsAvailable: true},
		{Name: "John Mwangi", Phone: "0722333444", Skill: "Carpenter", Location: "Pipeline", IsAvailable: true},
		{Name: "James Kimani", Phone: "0733444555", Skill: "Electrician", Location: "Gikambura", IsAvailable: true},
	}
	for _, w := range seedWorkers {
		if _, err := dir.CreateWorker(ctx, w); err != nil {
			return err
		}
	}

	_, err = dir.CreateJob(ctx, models.InsertJob{
		ContactPhone:    "0799888777",
		SkillRequired:   "Electrician",
		Location:        "Gikambura",
		DailyRate:       1500,
		ProjectDuration: "1 day",
		AdditionalNotes: "Need wiring installation for a new kitchen.",
	})
	return err
}
