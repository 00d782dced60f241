// internal/server/handlers.go
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"yaya-jobs/internal/common/config"
	apperrors "yaya-jobs/internal/common/errors"
	"yaya-jobs/internal/common/logger"
	"yaya-jobs/internal/common/metrics"
	"yaya-jobs/internal/matching"
	"yaya-jobs/internal/models"
	"yaya-jobs/internal/notify"
	"yaya-jobs/internal/store"
	"yaya-jobs/internal/ussd"
)

type handlers struct {
	config     *config.Config
	dialog     *ussd.Engine
	matcher    *matching.Engine
	dispatcher *notify.Dispatcher
	dir        store.DirectoryStore
	logger     logger.Logger
	started    time.Time
}

// handleUssd is the gateway callback. The gateway expects a plain-text body
// and treats any non-200 as a dead session, so every path answers 200.
func (h *handlers) handleUssd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeUssd(w, ussd.Response{Kind: ussd.End, Text: "An error occurred. Please try again later."})
		return
	}

	sessionID := r.FormValue("sessionId")
	phoneNumber := r.FormValue("phoneNumber")
	text := r.FormValue("text")

	if sessionID == "" || phoneNumber == "" {
		h.logger.Warn("ussd callback missing identifiers", map[string]interface{}{
			"hasSession": sessionID != "",
			"hasPhone":   phoneNumber != "",
		})
		h.writeUssd(w, ussd.Response{Kind: ussd.End, Text: "An error occurred. Please try again later."})
		return
	}

	resp := h.dialog.Handle(r.Context(), sessionID, phoneNumber, text)
	h.writeUssd(w, resp)
}

func (h *handlers) writeUssd(w http.ResponseWriter, resp ussd.Response) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(resp.Render()))
}

type createJobResponse struct {
	Job            *models.Job      `json:"job"`
	MatchedWorkers []models.Worker  `json:"matchedWorkers"`
	Notifications  []notify.Outcome `json:"notifications"`
}

// handleCreateJob posts a job, matches it, and fans the alerts out before
// responding so the caller sees who was reached.
func (h *handlers) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var input models.InsertJob
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, apperrors.NewInvalidJobDataError("invalid request body"))
		return
	}
	if err := validateJob(input); err != nil {
		h.writeError(w, err)
		return
	}

	ctx := r.Context()
	job, err := h.dir.CreateJob(ctx, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	metrics.JobsCreated.Inc()

	results, err := h.matcher.MatchJob(ctx, job)
	if err != nil {
		// The job exists even though matching failed; report it with
		// what was achieved.
		h.logger.Error("matching failed for new job", map[string]interface{}{
			"jobId": job.ID,
			"error": err,
		})
		h.writeJSON(w, http.StatusCreated, createJobResponse{Job: job, MatchedWorkers: []models.Worker{}, Notifications: []notify.Outcome{}})
		return
	}

	matchIDs := make([]int64, len(results))
	workers := make([]models.Worker, len(results))
	for i, result := range results {
		matchIDs[i] = result.Match.ID
		workers[i] = result.Worker
	}

	outcomes := h.dispatcher.NotifyBulk(ctx, matchIDs)
	if outcomes == nil {
		outcomes = []notify.Outcome{}
	}

	h.writeJSON(w, http.StatusCreated, createJobResponse{
		Job:            job,
		MatchedWorkers: workers,
		Notifications:  outcomes,
	})
}

func validateJob(input models.InsertJob) error {
	switch {
	case input.ContactPhone == "":
		return apperrors.NewInvalidJobDataError("contactPhone is required")
	case !models.IsValidSkill(input.SkillRequired):
		return apperrors.NewInvalidJobDataError("skillRequired must be one of the supported skills")
	case !models.IsValidLocation(input.Location):
		return apperrors.NewInvalidJobDataError("location must be one of the supported locations")
	case input.DailyRate < 0:
		return apperrors.NewInvalidJobDataError("dailyRate must not be negative")
	case input.ProjectDuration != "" && !models.IsValidDuration(input.ProjectDuration):
		return apperrors.NewInvalidJobDataError("projectDuration must be one of the supported durations")
	}
	return nil
}

// handleRegisterWorker registers a worker through the management API,
// bypassing the dialog flow.
func (h *handlers) handleRegisterWorker(w http.ResponseWriter, r *http.Request) {
	var input models.InsertWorker
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, apperrors.NewInvalidWorkerDataError("invalid request body"))
		return
	}

	switch {
	case input.Name == "":
		h.writeError(w, apperrors.NewInvalidWorkerDataError("name is required"))
		return
	case input.Phone == "":
		h.writeError(w, apperrors.NewInvalidWorkerDataError("phone is required"))
		return
	case !models.IsValidSkill(input.Skill):
		h.writeError(w, apperrors.NewInvalidWorkerDataError("skill must be one of the supported skills"))
		return
	case !models.IsValidLocation(input.Location):
		h.writeError(w, apperrors.NewInvalidWorkerDataError("location must be one of the supported locations"))
		return
	}
	input.IsAvailable = true

	worker, err := h.dir.CreateWorker(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, worker)
}

func (h *handlers) handleWorkerCount(w http.ResponseWriter, r *http.Request) {
	skill := r.URL.Query().Get("skill")
	location := r.URL.Query().Get("location")
	if !models.IsValidSkill(skill) {
		h.writeError(w, apperrors.NewInvalidWorkerDataError("skill must be one of the supported skills"))
		return
	}
	if !models.IsValidLocation(location) {
		h.writeError(w, apperrors.NewInvalidWorkerDataError("location must be one of the supported locations"))
		return
	}

	count, err := h.dir.GetWorkerCount(r.Context(), skill, location)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"skill":    skill,
		"location": location,
		"count":    count,
	})
}

func (h *handlers) handleListSkills(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"skills": models.Skills})
}

func (h *handlers) handleListLocations(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"locations": models.Locations})
}

// handleNotifyMatch re-sends the job alert for one existing match.
func (h *handlers) handleNotifyMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := strconv.ParseInt(mux.Vars(r)["matchId"], 10, 64)
	if err != nil {
		h.writeError(w, apperrors.NewInvalidJobDataError("matchId must be an integer"))
		return
	}

	if _, err := h.dir.GetMatchDetails(r.Context(), matchID); err != nil {
		h.writeError(w, err)
		return
	}

	outcome := h.dispatcher.Notify(r.Context(), matchID)
	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusBadGateway
	}
	h.writeJSON(w, status, outcome)
}

type inboundSMS struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// handleInboundSMS receives worker SMS replies from the gateway. Replies are
// acknowledged and logged; there is no reply-driven flow yet.
func (h *handlers) handleInboundSMS(w http.ResponseWriter, r *http.Request) {
	var msg inboundSMS
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.writeError(w, apperrors.NewInvalidWorkerDataError("invalid request body"))
		return
	}

	h.logger.Info("inbound sms received", map[string]interface{}{
		"from": msg.From,
		"text": msg.Text,
	})
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "received"})
}

func (h *handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": h.config.App.Name,
		"version": h.config.App.Version,
		"uptime":  time.Since(h.started).String(),
	})
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", map[string]interface{}{"error": err})
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorResponse{Error: "internal server error"}

	if stdErr, ok := err.(*apperrors.StandardError); ok {
		body = errorResponse{
			Error:   stdErr.Message,
			Code:    string(stdErr.Code),
			Details: stdErr.Details,
		}
		switch {
		case apperrors.IsNotFound(stdErr):
			status = http.StatusNotFound
		case apperrors.IsDuplicateWorker(stdErr):
			status = http.StatusConflict
		case stdErr.Code == apperrors.ErrCodeInvalidWorkerData || stdErr.Code == apperrors.ErrCodeInvalidJobData:
			status = http.StatusBadRequest
		case stdErr.Code == apperrors.ErrCodeNotificationSendFailed:
			status = http.StatusBadGateway
		}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", map[string]interface{}{"error": err})
	}
	h.writeJSON(w, status, body)
}
