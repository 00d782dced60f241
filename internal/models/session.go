// internal/models/session.go
package models

import "time"

// UssdStep identifies the dialog's current position in the menu flow.
type UssdStep string

const (
	StepMainMenu          UssdStep = "main_menu"
	StepRegisterName      UssdStep = "register_name"
	StepRegisterSkill     UssdStep = "register_skill"
	StepSelectLocation    UssdStep = "select_location"
	StepUpdateProfileMenu UssdStep = "update_profile_menu"
	StepUpdateSkill       UssdStep = "update_skill"
	StepUpdateLocation    UssdStep = "update_location"
	StepViewJobs          UssdStep = "view_jobs"
)

// StepData carries fields forward between adjacent steps of one flow. At most
// one variant is set, keyed by the session's current step; steps outside that
// flow must not read it.
type StepData struct {
	Registration  *RegistrationData  `json:"registration,omitempty"`
	ProfileUpdate *ProfileUpdateData `json:"profileUpdate,omitempty"`
}

// RegistrationData accumulates answers across the registration flow. Name is
// set by the name step, Skill by the skill step.
type RegistrationData struct {
	Name  string `json:"name"`
	Skill string `json:"skill,omitempty"`
}

// ProfileUpdateData carries the resolved worker through the update flow.
type ProfileUpdateData struct {
	WorkerID int64 `json:"workerId"`
}

// UssdSession is the durable record for one dialog session. The session token
// is caller-supplied and opaque; the record is never explicitly deleted.
type UssdSession struct {
	SessionID   string    `json:"sessionId" db:"session_id"`
	PhoneNumber string    `json:"phoneNumber" db:"phone_number"`
	Step        UssdStep  `json:"step" db:"step"`
	Data        StepData  `json:"data" db:"data"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
