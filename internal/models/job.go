// internal/models/job.go
package models

import "time"

// Job represents a posted construction job.
type Job struct {
	ID              int64     `json:"id" db:"id"`
	ContactPhone    string    `json:"contactPhone" db:"contact_phone"`
	SkillRequired   string    `json:"skillRequired" db:"skill_required"`
	Location        string    `json:"location" db:"location"`
	DailyRate       int       `json:"dailyRate" db:"daily_rate"`
	ProjectDuration string    `json:"projectDuration" db:"project_duration"`
	AdditionalNotes string    `json:"additionalNotes,omitempty" db:"additional_notes"`
	IsActive        bool      `json:"isActive" db:"is_active"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// InsertJob carries the fields accepted when posting a job. New jobs are
// always created active.
type InsertJob struct {
	ContactPhone    string `json:"contactPhone"`
	SkillRequired   string `json:"skillRequired"`
	Location        string `json:"location"`
	DailyRate       int    `json:"dailyRate"`
	ProjectDuration string `json:"projectDuration"`
	AdditionalNotes string `json:"additionalNotes,omitempty"`
}
