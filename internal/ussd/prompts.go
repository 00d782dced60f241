// internal/ussd/prompts.go
package ussd

import (
	"fmt"
	"strings"

	"yaya-jobs/internal/models"
)

const (
	mainMenuBody = "Choose an option:\n1. Register as a Worker\n2. View Available Job Matches\n3. Update Profile"

	updateMenuBody = "What would you like to update?\n1. Skill\n2. Location\n3. Back to Main Menu"

	msgNotRegistered     = "You are not registered yet. Please register first."
	msgAlreadyRegistered = "You are already registered."
	msgNoMatches         = "No job matches found. We'll notify you when new matching jobs are available."
	msgErrorOccurred     = "An error occurred. Please try again later."
	msgEnterName         = "Enter your full name:"
)

func numberedList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}

func mainMenuPrompt() string {
	return "Welcome to Yaya - Construction Jobs\n" + mainMenuBody
}

func invalidMainMenuPrompt() string {
	return "Invalid option. Please choose:\n1. Register as a Worker\n2. View Available Job Matches\n3. Update Profile"
}

func skillListPrompt() string {
	return "Select your skill:\n" + numberedList(models.Skills)
}

func invalidSkillListPrompt() string {
	return "Invalid selection. Please select a skill:\n" + numberedList(models.Skills)
}

func newSkillListPrompt() string {
	return "Select your new skill:\n" + numberedList(models.Skills)
}

func locationListPrompt() string {
	return "Select your location:\n" + numberedList(models.Locations)
}

func invalidLocationListPrompt() string {
	return "Invalid selection. Please select a location:\n" + numberedList(models.Locations)
}

func newLocationListPrompt() string {
	return "Select your new location:\n" + numberedList(models.Locations)
}

func updateProfilePrompt() string {
	return "Update Profile\n" + updateMenuBody
}

func invalidUpdateProfilePrompt() string {
	return "Invalid option. Please choose:\n1. Skill\n2. Location\n3. Back to Main Menu"
}

func registrationSuccessMessage(name, phone, skill, location, serviceCode string) string {
	return fmt.Sprintf(
		"Registration successful!\n\nYour profile:\nName: %s\nPhone: %s\nSkill: %s\nLocation: %s\n\n"+
			"You will receive SMS notifications when matching jobs are posted. Dial %s to check your job matches at any time.",
		name, phone, skill, location, serviceCode)
}

func skillUpdatedMessage(skill string) string {
	return fmt.Sprintf("Your skill has been updated to: %s\n\nYou will now receive job matches for %s jobs.", skill, skill)
}

func locationUpdatedMessage(location string) string {
	return fmt.Sprintf("Your location has been updated to: %s\n\nYou will now receive job matches for jobs in %s.", location, location)
}

func singleJobMessage(job models.Job) string {
	rate := "Rate not specified"
	if job.DailyRate > 0 {
		rate = fmt.Sprintf("KSh %d/day", job.DailyRate)
	}
	duration := job.ProjectDuration
	if duration == "" {
		duration = "Not specified"
	}
	details := ""
	if job.AdditionalNotes != "" {
		details = "\nDetails: " + job.AdditionalNotes
	}

	return fmt.Sprintf(
		"JOB OPPORTUNITY\n\nSkill: %s\nLocation: %s\nPayment: %s\nDuration: %s%s\nPosted: %s\n\nTo apply, call: %s",
		job.SkillRequired, job.Location, rate, duration, details,
		job.CreatedAt.Format("02 Jan 2006"), job.ContactPhone)
}

// jobListMessage renders up to the 3 most recent matching jobs, newest first.
func jobListMessage(jobs []models.Job, serviceCode string) string {
	recent := jobs
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	var b strings.Builder
	b.WriteString("Your available job matches:\n\n")
	for i := len(recent) - 1; i >= 0; i-- {
		job := recent[i]
		b.WriteString(fmt.Sprintf("%d. %s in %s\n", len(recent)-i, job.SkillRequired, job.Location))
		b.WriteString(fmt.Sprintf("   Pay: KSh %d/day, %s\n", job.DailyRate, job.ProjectDuration))
		b.WriteString(fmt.Sprintf("   Call: %s\n", job.ContactPhone))
		b.WriteString(fmt.Sprintf("   Posted: %s\n\n", job.CreatedAt.Format("02 Jan 2006")))
	}
	b.WriteString(fmt.Sprintf("Dial %s and select option 2 to view again.", serviceCode))
	return b.String()
}
