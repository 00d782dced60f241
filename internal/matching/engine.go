// internal/matching/engine.go
package matching

import (
	"context"

	"yaya-jobs/internal/common/logger"
	"yaya-jobs/internal/common/metrics"
	"yaya-jobs/internal/models"
	"yaya-jobs/internal/store"
)

// Config holds matching engine settings.
type Config struct {
	// MaxWorkersPerJob caps how many workers one job is matched to.
	MaxWorkersPerJob int
}

// Result pairs a created match with the worker it selected.
type Result struct {
	Match  models.Match
	Worker models.Worker
}

// Engine selects workers for newly posted jobs. Eligibility is an exact
// skill and location match on available workers; selection order is
// registration order.
type Engine struct {
	config *Config
	dir    store.DirectoryStore
	logger logger.Logger
}

func NewEngine(config *Config, dir store.DirectoryStore, log logger.Logger) *Engine {
	return &Engine{
		config: config,
		dir:    dir,
		logger: log.WithFields(map[string]interface{}{"component": "matching-engine"}),
	}
}

// MatchJob finds eligible workers for the job and records a match row per
// selected worker. An empty result is a normal outcome, not an error.
func (e *Engine) MatchJob(ctx context.Context, job *models.Job) ([]Result, error) {
	workers, err := e.dir.FindMatchingWorkers(ctx, job.SkillRequired, job.Location, e.config.MaxWorkersPerJob)
	if err != nil {
		return nil, err
	}
	if len(workers) == 0 {
		e.logger.Info("no eligible workers for job", map[string]interface{}{
			"jobId":    job.ID,
			"skill":    job.SkillRequired,
			"location": job.Location,
		})
		return nil, nil
	}

	results := make([]Result, 0, len(workers))
	for _, worker := range workers {
		match, err := e.dir.CreateMatch(ctx, job.ID, worker.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, Result{Match: *match, Worker: worker})
		metrics.MatchesCreated.Inc()
	}

	e.logger.Info("job matched to workers", map[string]interface{}{
		"jobId":   job.ID,
		"matched": len(results),
	})
	return results, nil
}
