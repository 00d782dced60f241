// internal/ussd/engine.go
package ussd

import (
	"context"
	"strconv"
	"time"

	"yaya-jobs/internal/common/logger"
	"yaya-jobs/internal/common/metrics"
	"yaya-jobs/internal/models"
	"yaya-jobs/internal/store"
)

// ResponseKind distinguishes continuing prompts from terminal messages.
type ResponseKind string

const (
	// Continue tells the gateway to prompt for more input and resend the
	// full accumulated history.
	Continue ResponseKind = "CON"
	// End terminates the dialog; any further contact starts a new session.
	End ResponseKind = "END"
)

// Response is one outbound dialog message.
type Response struct {
	Kind ResponseKind
	Text string
}

// Render produces the gateway wire form. The single space after the prefix
// is part of the contract.
func (r Response) Render() string {
	return string(r.Kind) + " " + r.Text
}

func con(text string) Response { return Response{Kind: Continue, Text: text} }
func end(text string) Response { return Response{Kind: End, Text: text} }

// Config holds dialog engine settings.
type Config struct {
	// ServiceCode is the dial string echoed in terminal messages,
	// e.g. *384*15667#.
	ServiceCode string
}

// Engine drives the menu dialog. Each request is stateless on the wire; the
// engine derives position from the session store and persists every
// transition before responding, so a duplicate delivery of the same request
// observes the post-transition state.
type Engine struct {
	config   *Config
	dir      store.DirectoryStore
	sessions store.SessionStore
	logger   logger.Logger
}

func NewEngine(config *Config, dir store.DirectoryStore, sessions store.SessionStore, log logger.Logger) *Engine {
	return &Engine{
		config:   config,
		dir:      dir,
		sessions: sessions,
		logger:   log.WithFields(map[string]interface{}{"component": "ussd-engine"}),
	}
}

// Handle processes one inbound dialog request and always produces a
// response; internal faults become a generic terminal message because the
// transport requires an answer to every request.
func (e *Engine) Handle(ctx context.Context, sessionID, phoneNumber, text string) Response {
	started := time.Now()

	resp, step, err := e.process(ctx, sessionID, phoneNumber, text)
	if err != nil {
		e.logger.Error("dialog processing failed", map[string]interface{}{
			"sessionId": sessionID,
			"phone":     phoneNumber,
			"error":     err,
		})
		resp = end(msgErrorOccurred)
	}

	metrics.UssdRequests.WithLabelValues(string(step)).Inc()
	metrics.UssdResponses.WithLabelValues(string(resp.Kind)).Inc()
	metrics.UssdRequestDuration.WithLabelValues(string(step)).Observe(time.Since(started).Seconds())

	return resp
}

func (e *Engine) process(ctx context.Context, sessionID, phoneNumber, text string) (Response, models.UssdStep, error) {
	input := Decode(text)

	// First contact always (re)issues the main menu, regardless of any
	// stored step for the token.
	if input.Initial {
		session := &models.UssdSession{
			SessionID:   sessionID,
			PhoneNumber: phoneNumber,
			Step:        models.StepMainMenu,
			CreatedAt:   time.Now().UTC(),
		}
		existing, err := e.sessions.Get(ctx, sessionID)
		if err != nil {
			return Response{}, models.StepMainMenu, err
		}
		if existing != nil {
			session.CreatedAt = existing.CreatedAt
			if err := e.sessions.Update(ctx, session); err != nil {
				return Response{}, models.StepMainMenu, err
			}
		} else if err := e.sessions.Create(ctx, session); err != nil {
			return Response{}, models.StepMainMenu, err
		}
		return con(mainMenuPrompt()), models.StepMainMenu, nil
	}

	session, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return Response{}, models.StepMainMenu, err
	}
	if session == nil {
		session = &models.UssdSession{
			SessionID:   sessionID,
			PhoneNumber: phoneNumber,
			Step:        models.StepMainMenu,
			CreatedAt:   time.Now().UTC(),
		}
		if err := e.sessions.Create(ctx, session); err != nil {
			return Response{}, models.StepMainMenu, err
		}
	}

	step := session.Step

	var resp Response
	switch session.Step {
	case models.StepMainMenu:
		resp, err = e.handleMainMenu(ctx, session, input.Token)
	case models.StepRegisterName:
		resp, err = e.handleRegisterName(ctx, session, text, input.Token)
	case models.StepRegisterSkill:
		resp, err = e.handleRegisterSkill(ctx, session, input.Token)
	case models.StepSelectLocation:
		resp, err = e.handleSelectLocation(ctx, session, input.Token)
	case models.StepUpdateProfileMenu:
		resp, err = e.handleUpdateProfileMenu(ctx, session, input.Token)
	case models.StepUpdateSkill:
		resp, err = e.handleUpdateSkill(ctx, session, input.Token)
	case models.StepUpdateLocation:
		resp, err = e.handleUpdateLocation(ctx, session, input.Token)
	default:
		// Unknown or corrupt stored step: self-heal to the main menu
		// instead of failing the request.
		e.logger.Warn("unknown session step, resetting", map[string]interface{}{
			"sessionId": session.SessionID,
			"step":      session.Step,
		})
		resp, err = e.resetToMainMenu(ctx, session)
	}
	return resp, step, err
}

func (e *Engine) resetToMainMenu(ctx context.Context, session *models.UssdSession) (Response, error) {
	session.Step = models.StepMainMenu
	session.Data = models.StepData{}
	if err := e.sessions.Update(ctx, session); err != nil {
		return Response{}, err
	}
	return con(mainMenuPrompt()), nil
}

func (e *Engine) handleMainMenu(ctx context.Context, session *models.UssdSession, choice string) (Response, error) {
	switch choice {
	case "1":
		session.Step = models.StepRegisterName
		session.Data = models.StepData{Registration: &models.RegistrationData{}}
		if err := e.sessions.Update(ctx, session); err != nil {
			return Response{}, err
		}
		return con(msgEnterName), nil

	case "2":
		worker, err := e.dir.GetWorkerByPhone(ctx, session.PhoneNumber)
		if err != nil {
			return Response{}, err
		}
		if worker == nil {
			return end(msgNotRegistered), nil
		}

		jobs, err := e.dir.FindActiveJobs(ctx, worker.Skill, worker.Location)
		if err != nil {
			return Response{}, err
		}
		switch len(jobs) {
		case 0:
			return end(msgNoMatches), nil
		case 1:
			return end(singleJobMessage(jobs[0])), nil
		default:
			return end(jobListMessage(jobs, e.config.ServiceCode)), nil
		}

	case "3":
		worker, err := e.dir.GetWorkerByPhone(ctx, session.PhoneNumber)
		if err != nil {
			return Response{}, err
		}
		if worker == nil {
			return end(msgNotRegistered), nil
		}

		session.Step = models.StepUpdateProfileMenu
		session.Data = models.StepData{ProfileUpdate: &models.ProfileUpdateData{WorkerID: worker.ID}}
		if err := e.sessions.Update(ctx, session); err != nil {
			return Response{}, err
		}
		return con(updateProfilePrompt()), nil

	default:
		return con(invalidMainMenuPrompt()), nil
	}
}

func (e *Engine) handleRegisterName(ctx context.Context, session *models.UssdSession, text, token string) (Response, error) {
	name := NameToken(text, token)
	if name == "" {
		return con(msgEnterName), nil
	}

	session.Step = models.StepRegisterSkill
	session.Data = models.StepData{Registration: &models.RegistrationData{Name: name}}
	if err := e.sessions.Update(ctx, session); err != nil {
		return Response{}, err
	}
	return con(skillListPrompt()), nil
}

func (e *Engine) handleRegisterSkill(ctx context.Context, session *models.UssdSession, token string) (Response, error) {
	if session.Data.Registration == nil {
		return e.resetToMainMenu(ctx, session)
	}

	index, err := strconv.Atoi(token)
	if err != nil {
		return con(invalidSkillListPrompt()), nil
	}
	skill, ok := models.SkillAt(index)
	if !ok {
		return con(invalidSkillListPrompt()), nil
	}

	session.Step = models.StepSelectLocation
	session.Data.Registration.Skill = skill
	if err := e.sessions.Update(ctx, session); err != nil {
		return Response{}, err
	}
	return con(locationListPrompt()), nil
}

func (e *Engine) handleSelectLocation(ctx context.Context, session *models.UssdSession, token string) (Response, error) {
	reg := session.Data.Registration
	if reg == nil || reg.Skill == "" {
		return e.resetToMainMenu(ctx, session)
	}

	index, err := strconv.Atoi(token)
	if err != nil {
		return con(invalidLocationListPrompt()), nil
	}
	location, ok := models.LocationAt(index)
	if !ok {
		return con(invalidLocationListPrompt()), nil
	}

	existing, err := e.dir.GetWorkerByPhone(ctx, session.PhoneNumber)
	if err != nil {
		return Response{}, err
	}
	if existing != nil {
		if _, err := e.resetToMainMenu(ctx, session); err != nil {
			return Response{}, err
		}
		return end(msgAlreadyRegistered), nil
	}

	worker, err := e.dir.CreateWorker(ctx, models.InsertWorker{
		Name:        reg.Name,
		Phone:       session.PhoneNumber,
		Skill:       reg.Skill,
		Location:    location,
		IsAvailable: true,
	})
	if err != nil {
		return Response{}, err
	}

	e.logger.Info("worker registered via dialog", map[string]interface{}{
		"workerId": worker.ID,
		"skill":    worker.Skill,
		"location": worker.Location,
	})

	if _, err := e.resetToMainMenu(ctx, session); err != nil {
		return Response{}, err
	}
	return end(registrationSuccessMessage(worker.Name, worker.Phone, worker.Skill, worker.Location, e.config.ServiceCode)), nil
}

func (e *Engine) handleUpdateProfileMenu(ctx context.Context, session *models.UssdSession, choice string) (Response, error) {
	if session.Data.ProfileUpdate == nil {
		return e.resetToMainMenu(ctx, session)
	}

	switch choice {
	case "1":
		session.Step = models.StepUpdateSkill
		if err := e.sessions.Update(ctx, session); err != nil {
			return Response{}, err
		}
		return con(newSkillListPrompt()), nil
	case "2":
		session.Step = models.StepUpdateLocation
		if err := e.sessions.Update(ctx, session); err != nil {
			return Response{}, err
		}
		return con(newLocationListPrompt()), nil
	case "3":
		return e.resetToMainMenu(ctx, session)
	default:
		return con(invalidUpdateProfilePrompt()), nil
	}
}

func (e *Engine) handleUpdateSkill(ctx context.Context, session *models.UssdSession, token string) (Response, error) {
	if session.Data.ProfileUpdate == nil {
		return e.resetToMainMenu(ctx, session)
	}

	index, err := strconv.Atoi(token)
	if err != nil {
		return con(invalidSkillListPrompt()), nil
	}
	skill, ok := models.SkillAt(index)
	if !ok {
		return con(invalidSkillListPrompt()), nil
	}

	workerID := session.Data.ProfileUpdate.WorkerID
	if _, err := e.dir.UpdateWorkerSkill(ctx, workerID, skill); err != nil {
		e.logger.Error("skill update failed", map[string]interface{}{
			"workerId": workerID,
			"error":    err,
		})
		return end("Failed to update your skill. Please try again later."), nil
	}

	if _, err := e.resetToMainMenu(ctx, session); err != nil {
		return Response{}, err
	}
	return end(skillUpdatedMessage(skill)), nil
}

func (e *Engine) handleUpdateLocation(ctx context.Context, session *models.UssdSession, token string) (Response, error) {
	if session.Data.ProfileUpdate == nil {
		return e.resetToMainMenu(ctx, session)
	}

	index, err := strconv.Atoi(token)
	if err != nil {
		return con(invalidLocationListPrompt()), nil
	}
	location, ok := models.LocationAt(index)
	if !ok {
		return con(invalidLocationListPrompt()), nil
	}

	workerID := session.Data.ProfileUpdate.WorkerID
	if _, err := e.dir.UpdateWorkerLocation(ctx, workerID, location); err != nil {
		e.logger.Error("location update failed", map[string]interface{}{
			"workerId": workerID,
			"error":    err,
		})
		return end("Failed to update your location. Please try again later."), nil
	}

	if _, err := e.resetToMainMenu(ctx, session); err != nil {
		return Response{}, err
	}
	return end(locationUpdatedMessage(location)), nil
}
