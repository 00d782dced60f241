// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "yaya-jobs/internal/common/errors"
	"yaya-jobs/internal/models"

	"github.com/lib/pq"
)

// PostgresStore implements DirectoryStore over PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const workerColumns = `id, name, phone, skill, location, is_available, registered_at`

func scanWorker(row interface{ Scan(...interface{}) error }) (*models.Worker, error) {
	var w models.Worker
	err := row.Scan(&w.ID, &w.Name, &w.Phone, &w.Skill, &w.Location, &w.IsAvailable, &w.RegisteredAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetWorker fetches a worker by id.
func (s *PostgresStore) GetWorker(ctx context.Context, id int64) (*models.Worker, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+workerColumns+` FROM workers WHERE id = $1`, id)

	worker, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get worker", err)
	}
	return worker, nil
}

// GetWorkerByPhone fetches a worker by phone number, the natural key for
// dialog lookups.
func (s *PostgresStore) GetWorkerByPhone(ctx context.Context, phone string) (*models.Worker, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+workerColumns+` FROM workers WHERE phone = $1`, phone)

	worker, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get worker by phone", err)
	}
	return worker, nil
}

// CreateWorker inserts a worker. The unique index on phone is the backstop
// against concurrent duplicate registration; a violation maps to a duplicate
// error rather than a query failure.
func (s *PostgresStore) CreateWorker(ctx context.Context, worker models.InsertWorker) (*models.Worker, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO workers (name, phone, skill, location, is_available)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+workerColumns,
		worker.Name, worker.Phone, worker.Skill, worker.Location, worker.IsAvailable)

	created, err := scanWorker(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewDuplicateWorkerError(worker.Phone)
		}
		return nil, apperrors.NewQueryExecutionFailedError("create worker", err)
	}
	return created, nil
}

// UpdateWorkerSkill changes a worker's skill.
func (s *PostgresStore) UpdateWorkerSkill(ctx context.Context, workerID int64, skill string) (*models.Worker, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE workers SET skill = $1 WHERE id = $2 RETURNING `+workerColumns,
		skill, workerID)

	worker, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewWorkerNotFoundError("update skill")
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("update worker skill", err)
	}
	return worker, nil
}

// UpdateWorkerLocation changes a worker's location.
func (s *PostgresStore) UpdateWorkerLocation(ctx context.Context, workerID int64, location string) (*models.Worker, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE workers SET location = $1 WHERE id = $2 RETURNING `+workerColumns,
		location, workerID)

	worker, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewWorkerNotFoundError("update location")
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("update worker location", err)
	}
	return worker, nil
}

// GetWorkerCount counts available workers with exactly the given skill and location.
func (s *PostgresStore) GetWorkerCount(ctx context.Context, skill, location string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workers
		 WHERE skill = $1 AND location = $2 AND is_available = TRUE`,
		skill, location).Scan(&count)
	if err != nil {
		return 0, apperrors.NewQueryExecutionFailedError("worker count", err)
	}
	return count, nil
}

// FindMatchingWorkers returns up to limit available workers with the given
// skill and location, in insertion order.
func (s *PostgresStore) FindMatchingWorkers(ctx context.Context, skill, location string, limit int) ([]models.Worker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workerColumns+` FROM workers
		 WHERE skill = $1 AND location = $2 AND is_available = TRUE
		 ORDER BY id
		 LIMIT $3`,
		skill, location, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("find matching workers", err)
	}
	defer rows.Close()

	var workers []models.Worker
	for rows.Next() {
		worker, err := scanWorker(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan worker", err)
		}
		workers = append(workers, *worker)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("find matching workers", err)
	}
	return workers, nil
}

const jobColumns = `id, contact_phone, skill_required, location, daily_rate, project_duration, additional_notes, is_active, created_at`

func scanJob(row interface{ Scan(...interface{}) error }) (*models.Job, error) {
	var j models.Job
	var notes sql.NullString
	err := row.Scan(&j.ID, &j.ContactPhone, &j.SkillRequired, &j.Location,
		&j.DailyRate, &j.ProjectDuration, &notes, &j.IsActive, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	j.AdditionalNotes = notes.String
	return &j, nil
}

// GetJob fetches a job by id.
func (s *PostgresStore) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get job", err)
	}
	return job, nil
}

// CreateJob inserts a job posting.
func (s *PostgresStore) CreateJob(ctx context.Context, job models.InsertJob) (*models.Job, error) {
	var notes sql.NullString
	if job.AdditionalNotes != "" {
		notes = sql.NullString{String: job.AdditionalNotes, Valid: true}
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO jobs (contact_phone, skill_required, location, daily_rate, project_duration, additional_notes, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		 RETURNING `+jobColumns,
		job.ContactPhone, job.SkillRequired, job.Location, job.DailyRate,
		job.ProjectDuration, notes)

	created, err := scanJob(row)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("create job", err)
	}
	return created, nil
}

// FindActiveJobs returns active jobs requiring the given skill in the given
// location, oldest first.
func (s *PostgresStore) FindActiveJobs(ctx context.Context, skill, location string) ([]models.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE skill_required = $1 AND location = $2 AND is_active = TRUE
		 ORDER BY id`,
		skill, location)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("find active jobs", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan job", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("find active jobs", err)
	}
	return jobs, nil
}

const matchColumns = `id, job_id, worker_id, notification_sent, notification_time, worker_responded`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	var notifiedAt sql.NullTime
	err := row.Scan(&m.ID, &m.JobID, &m.WorkerID, &m.NotificationSent, &notifiedAt, &m.WorkerResponded)
	if err != nil {
		return nil, err
	}
	if notifiedAt.Valid {
		m.NotificationTime = &notifiedAt.Time
	}
	return &m, nil
}

// CreateMatch inserts a match with the notification not yet sent.
func (s *PostgresStore) CreateMatch(ctx context.Context, jobID, workerID int64) (*models.Match, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO matches (job_id, worker_id, notification_sent, worker_responded)
		 VALUES ($1, $2, FALSE, FALSE)
		 RETURNING `+matchColumns,
		jobID, workerID)

	match, err := scanMatch(row)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("create match", err)
	}
	return match, nil
}

// GetMatchesByJob returns all matches for a job.
func (s *PostgresStore) GetMatchesByJob(ctx context.Context, jobID int64) ([]models.Match, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE job_id = $1 ORDER BY id`, jobID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("matches by job", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan match", err)
		}
		matches = append(matches, *match)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("matches by job", err)
	}
	return matches, nil
}

// GetMatchDetails resolves a match together with its worker and job. A match
// whose links cannot be resolved is a data-integrity fault and reported as
// not found.
func (s *PostgresStore) GetMatchDetails(ctx context.Context, matchID int64) (*models.MatchDetails, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, matchID)

	match, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewMatchNotFoundError(matchID, "no such match")
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get match", err)
	}

	worker, err := s.GetWorker(ctx, match.WorkerID)
	if err != nil {
		return nil, err
	}
	job, err := s.GetJob(ctx, match.JobID)
	if err != nil {
		return nil, err
	}
	if worker == nil || job == nil {
		return nil, apperrors.NewMatchNotFoundError(matchID, "dangling worker or job reference")
	}

	return &models.MatchDetails{Match: *match, Worker: *worker, Job: *job}, nil
}

// MarkMatchNotified records a successful notification send, exactly once.
func (s *PostgresStore) MarkMatchNotified(ctx context.Context, matchID int64, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE matches SET notification_sent = TRUE, notification_time = $1 WHERE id = $2`,
		at, matchID)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("mark match notified", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewMatchNotFoundError(matchID, "no such match")
	}
	return nil
}

// isUniqueViolation checks for the PostgreSQL unique constraint error code.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
