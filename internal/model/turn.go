package model

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one utterance in a student chat transcript. Transcripts are
// transient: they live in the transcript store, never in MySQL.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
