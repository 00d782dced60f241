// internal/ussd/decoder.go
package ussd

import "strings"

// Delimiter separates the keystrokes accumulated in the gateway's text
// parameter since the session began.
const Delimiter = "*"

// Input is the decoded result for one inbound dialog request.
type Input struct {
	// Initial marks a brand-new session (empty text). It always routes to
	// the main menu regardless of any stored step.
	Initial bool
	// Token is the most recent delimiter-separated segment. Earlier
	// segments are history; the session record is the source of truth for
	// anything before the current step.
	Token string
}

// Decode extracts the latest user-entered token from the accumulated
// interaction string.
func Decode(text string) Input {
	if text == "" {
		return Input{Initial: true}
	}
	parts := strings.Split(text, Delimiter)
	return Input{Token: parts[len(parts)-1]}
}

// NameToken extracts the free-text name entered after the main-menu choice.
// The name step is the one place a submission carries a positional field
// ("1*John Mwangi"): the name is the second segment, not the last, because a
// name containing the delimiter would otherwise be truncated.
func NameToken(text, fallback string) string {
	parts := strings.Split(text, Delimiter)
	if len(parts) > 1 {
		return parts[1]
	}
	return fallback
}
