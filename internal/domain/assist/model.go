package assist

import (
	"time"
)

// ChatMessage is one turn in an assistant conversation as rendered on the
// dashboard.
type ChatMessage struct {
	ID        string       `json:"id"`
	Role      string       `json:"role"` // "user" or "alis"
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
	Actions   []ChatAction `json:"actions,omitempty"`
}

// ChatAction is a suggested quick-reply button attached to a message.
type ChatAction struct {
	Label   string `json:"label"`
	Action  string `json:"action"`
	Primary bool   `json:"primary,omitempty"`
}

// PatientContext scopes an assistant turn to the patient the clinician has
// open. ID may be a demo identifier rather than a UUID.
type PatientContext struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Unit    string `json:"unit,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// chatRequest is the proxy endpoint's body.
type chatRequest struct {
	Messages       []ChatMessage   `json:"messages"`
	PatientContext *PatientContext `json:"patientContext,omitempty"`
}
