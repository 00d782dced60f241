// internal/models/catalog.go
package models

// Skills is the fixed set of construction skills workers register under.
var Skills = []string{
	"Mason",
	"Carpenter",
	"Electrician",
	"Plumber",
	"Painter",
	"Welder",
	"General Labor",
}

// Locations is the fixed set of areas served.
var Locations = []string{
	"Pipeline",
	"Gikambura",
	"Kawangware",
	"Kasarani",
	"Rongai",
	"Kitengela",
}

// Durations is the fixed set of project duration labels.
var Durations = []string{
	"1 day",
	"2-3 days",
	"1 week",
	"2 weeks",
	"1 month",
	"3+ months",
}

// SkillAt resolves a 1-based menu index into a skill.
func SkillAt(index int) (string, bool) {
	if index < 1 || index > len(Skills) {
		return "", false
	}
	return Skills[index-1], true
}

// LocationAt resolves a 1-based menu index into a location.
func LocationAt(index int) (string, bool) {
	if index < 1 || index > len(Locations) {
		return "", false
	}
	return Locations[index-1], true
}

// IsValidSkill reports whether s is in the skill catalog.
func IsValidSkill(s string) bool {
	for _, skill := range Skills {
		if skill == s {
			return true
		}
	}
	return false
}

// IsValidLocation reports whether l is in the location catalog.
func IsValidLocation(l string) bool {
	for _, location := range Locations {
		if location == l {
			return true
		}
	}
	return false
}

// IsValidDuration reports whether d is in the duration catalog.
func IsValidDuration(d string) bool {
	for _, duration := range Durations {
		if duration == d {
			return true
		}
	}
	return false
}
