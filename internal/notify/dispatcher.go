// internal/notify/dispatcher.go
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	apperrors "yaya-jobs/internal/common/errors"
	"yaya-jobs/internal/common/logger"
	"yaya-jobs/internal/common/metrics"
	"yaya-jobs/internal/models"
	"yaya-jobs/internal/store"
)

// SNSService captures the SNS operations used by the dispatcher.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Config holds notification dispatch settings.
type Config struct {
	// Enabled gates outbound SMS. When false, dispatch is skipped and
	// matches are left unmarked so a later run can pick them up.
	Enabled bool
	// SenderID is the alphanumeric sender shown on recipient handsets.
	SenderID string
}

// Outcome reports the result of one match notification.
type Outcome struct {
	MatchID int64  `json:"matchId"`
	Success bool   `json:"success"`
	Detail  string `json:"detail,omitempty"`
}

// Dispatcher sends job-alert SMS messages for worker matches. Sends are
// independent per match; one failed recipient never aborts the others.
type Dispatcher struct {
	config *Config
	dir    store.DirectoryStore
	sns    SNSService
	logger logger.Logger
}

func NewDispatcher(config *Config, dir store.DirectoryStore, snsService SNSService, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		config: config,
		dir:    dir,
		sns:    snsService,
		logger: log.WithFields(map[string]interface{}{"component": "notify-dispatcher"}),
	}
}

// Notify sends the job-alert SMS for a single match and records the send on
// the match row. A missing match is a failure outcome, not a panic path.
func (d *Dispatcher) Notify(ctx context.Context, matchID int64) Outcome {
	details, err := d.dir.GetMatchDetails(ctx, matchID)
	if err != nil {
		d.logger.Error("match lookup failed", map[string]interface{}{
			"matchId": matchID,
			"error":   err,
		})
		metrics.NotificationsSent.WithLabelValues("failure").Inc()
		return Outcome{MatchID: matchID, Detail: err.Error()}
	}

	if !d.config.Enabled {
		d.logger.Info("sms disabled, skipping send", map[string]interface{}{"matchId": matchID})
		metrics.NotificationsSent.WithLabelValues("skipped").Inc()
		return Outcome{MatchID: matchID, Success: true, Detail: "sms disabled"}
	}

	message := jobAlertMessage(details)
	phone := NormalizePhone(details.Worker.Phone)

	input := &sns.PublishInput{
		Message:     aws.String(message),
		PhoneNumber: aws.String(phone),
	}
	if d.config.SenderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(d.config.SenderID),
			},
		}
	}

	if _, err := d.sns.Publish(ctx, input); err != nil {
		sendErr := apperrors.NewNotificationSendFailedError(err)
		d.logger.Error("sms publish failed", map[string]interface{}{
			"matchId": matchID,
			"phone":   phone,
			"error":   sendErr,
		})
		metrics.NotificationsSent.WithLabelValues("failure").Inc()
		return Outcome{MatchID: matchID, Detail: sendErr.Error()}
	}

	// The SMS is already out; a bookkeeping failure must not turn the
	// outcome into a failure or a retry would double-text the worker.
	if err := d.dir.MarkMatchNotified(ctx, matchID, time.Now().UTC()); err != nil {
		d.logger.Warn("failed to record notification on match", map[string]interface{}{
			"matchId": matchID,
			"error":   err,
		})
	}

	d.logger.Info("job alert sent", map[string]interface{}{
		"matchId": matchID,
		"phone":   phone,
	})
	metrics.NotificationsSent.WithLabelValues("success").Inc()
	return Outcome{MatchID: matchID, Success: true}
}

// NotifyBulk fans out one send per match concurrently and waits for all of
// them. Outcomes are returned in input order.
func (d *Dispatcher) NotifyBulk(ctx context.Context, matchIDs []int64) []Outcome {
	outcomes := make([]Outcome, len(matchIDs))
	var wg sync.WaitGroup
	for i, matchID := range matchIDs {
		wg.Add(1)
		go func(i int, matchID int64) {
			defer wg.Done()
			outcomes[i] = d.Notify(ctx, matchID)
		}(i, matchID)
	}
	wg.Wait()
	return outcomes
}

// NormalizePhone prepares a stored phone number for the SMS gateway: spaces
// are stripped and a leading + is added when absent.
func NormalizePhone(phone string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if cleaned == "" {
		return cleaned
	}
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = "+" + cleaned
	}
	return cleaned
}

func jobAlertMessage(details *models.MatchDetails) string {
	notes := details.Job.AdditionalNotes
	if notes == "" {
		notes = "N/A"
	}
	return fmt.Sprintf(
		"Job alert: %s needed in %s. Pay: KSh %d/day, Duration: %s. Details: %s. Call %s to apply. By Yaya Labor.",
		details.Job.SkillRequired, details.Job.Location, details.Job.DailyRate,
		details.Job.ProjectDuration, notes, details.Job.ContactPhone)
}
