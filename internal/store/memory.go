// internal/store/memory.go
package store

import (
	"context"
	"sync"
	"time"

	apperrors "yaya-jobs/internal/common/errors"
	"yaya-jobs/internal/models"
)

// MemoryStore is an in-memory implementation of DirectoryStore and
// SessionStore for tests and local development. Records keep insertion order,
// matching the Postgres store's id ordering.
type MemoryStore struct {
	mu sync.Mutex

	workers  []models.Worker
	jobs     []models.Job
	matches  []models.Match
	sessions map[string]models.UssdSession

	nextWorkerID int64
	nextJobID    int64
	nextMatchID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:     make(map[string]models.UssdSession),
		nextWorkerID: 1,
		nextJobID:    1,
		nextMatchID:  1,
	}
}

var _ DirectoryStore = (*MemoryStore)(nil)
var _ SessionStore = (*MemoryStore)(nil)

func (s *MemoryStore) GetWorker(_ context.Context, id int64) (*models.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers {
		if w.ID == id {
			worker := w
			return &worker, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetWorkerByPhone(_ context.Context, phone string) (*models.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers {
		if w.Phone == phone {
			worker := w
			return &worker, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateWorker(_ context.Context, worker models.InsertWorker) (*models.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers {
		if w.Phone == worker.Phone {
			return nil, apperrors.NewDuplicateWorkerError(worker.Phone)
		}
	}
	created := models.Worker{
		ID:           s.nextWorkerID,
		Name:         worker.Name,
		Phone:        worker.Phone,
		Skill:        worker.Skill,
		Location:     worker.Location,
		IsAvailable:  worker.IsAvailable,
		RegisteredAt: time.Now().UTC(),
	}
	s.nextWorkerID++
	s.workers = append(s.workers, created)
	return &created, nil
}

func (s *MemoryStore) UpdateWorkerSkill(_ context.Context, workerID int64, skill string) (*models.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.workers {
		if s.workers[i].ID == workerID {
			s.workers[i].Skill = skill
			worker := s.workers[i]
			return &worker, nil
		}
	}
	return nil, apperrors.NewWorkerNotFoundError("update skill")
}

func (s *MemoryStore) UpdateWorkerLocation(_ context.Context, workerID int64, location string) (*models.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.workers {
		if s.workers[i].ID == workerID {
			s.workers[i].Location = location
			worker := s.workers[i]
			return &worker, nil
		}
	}
	return nil, apperrors.NewWorkerNotFoundError("update location")
}

func (s *MemoryStore) GetWorkerCount(_ context.Context, skill, location string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, w := range s.workers {
		if w.Skill == skill && w.Location == location && w.IsAvailable {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) FindMatchingWorkers(_ context.Context, skill, location string, limit int) ([]models.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Worker
	for _, w := range s.workers {
		if len(out) >= limit {
			break
		}
		if w.Skill == skill && w.Location == location && w.IsAvailable {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetJob(_ context.Context, id int64) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.ID == id {
			job := j
			return &job, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateJob(_ context.Context, job models.InsertJob) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := models.Job{
		ID:              s.nextJobID,
		ContactPhone:    job.ContactPhone,
		SkillRequired:   job.SkillRequired,
		Location:        job.Location,
		DailyRate:       job.DailyRate,
		ProjectDuration: job.ProjectDuration,
		AdditionalNotes: job.AdditionalNotes,
		IsActive:        true,
		CreatedAt:       time.Now().UTC(),
	}
	s.nextJobID++
	s.jobs = append(s.jobs, created)
	return &created, nil
}

func (s *MemoryStore) FindActiveJobs(_ context.Context, skill, location string) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Job
	for _, j := range s.jobs {
		if j.SkillRequired == skill && j.Location == location && j.IsActive {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateMatch(_ context.Context, jobID, workerID int64) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := models.Match{
		ID:       s.nextMatchID,
		JobID:    jobID,
		WorkerID: workerID,
	}
	s.nextMatchID++
	s.matches = append(s.matches, created)
	return &created, nil
}

func (s *MemoryStore) GetMatchesByJob(_ context.Context, jobID int64) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Match
	for _, m := range s.matches {
		if m.JobID == jobID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetMatchDetails(ctx context.Context, matchID int64) (*models.MatchDetails, error) {
	s.mu.Lock()
	var match *models.Match
	for _, m := range s.matches {
		if m.ID == matchID {
			found := m
			match = &found
			break
		}
	}
	s.mu.Unlock()

	if match == nil {
		return nil, apperrors.NewMatchNotFoundError(matchID, "no such match")
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

func (s *MemoryStore) MarkMatchNotified(_ context.Context, matchID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.matches {
		if s.matches[i].ID == matchID {
			s.matches[i].NotificationSent = true
			notifiedAt := at
			s.matches[i].NotificationTime = &notifiedAt
			return nil
		}
	}
	return apperrors.NewMatchNotFoundError(matchID, "no such match")
}

// --- SessionStore ---

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*models.UssdSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		copied := session
		return &copied, nil
	}
	return nil, nil
}

func (s *MemoryStore) Create(_ context.Context, session *models.UssdSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = *session
	return nil
}

func (s *MemoryStore) Update(_ context.Context, session *models.UssdSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = *session
	return nil
}
