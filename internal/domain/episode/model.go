package episode

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks an episode through the generation pipeline.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
	StatusExpired    Status = "expired"
)

// Source kinds accepted by the API.
const (
	SourcePDF       = "pdf"
	SourceGoogleDoc = "google_doc"
)

// Episode represents a persisted podcast episode.
type Episode struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	SourceKind  string    `json:"source_kind" db:"source_kind"`
	SourceRef   string    `json:"source_ref" db:"source_ref"`
	Status      Status    `json:"status" db:"status"`
	Transcript  string    `json:"transcript,omitempty" db:"transcript"`
	AudioPath   string    `json:"-" db:"audio_path"`
	Characters  int       `json:"characters" db:"characters"`
	ErrorDetail string    `json:"error,omitempty" db:"error_detail"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// DialogueLine is a single spoken line of the generated script.
type DialogueLine struct {
	Text    string `json:"text" validate:"required"`
	Speaker string `json:"speaker" validate:"required,oneof=female-1 male-1 female-2"`
}

// Voice maps a speaker to its TTS voice.
func (l DialogueLine) Voice() string {
	switch l.Speaker {
	case "male-1":
		return "onyx"
	case "female-2":
		return "shimmer"
	default:
		return "alloy"
	}
}

// Dialogue is the structured LLM output: a working scratchpad followed by
// the lines to synthesize.
type Dialogue struct {
	Scratchpad string         `json:"scratchpad"`
	Lines      []DialogueLine `json:"dialogue" validate:"required,min=1,dive"`
}

// CreateRequest captures incoming generation payloads. Exactly one source
// (document parameter or uploaded PDF) must be provided; the handler
// enforces that before validation.
type CreateRequest struct {
	Document string `json:"document"`
	Title    string `json:"title" validate:"omitempty,max=200"`
}

// Filter encapsulates pagination params for episode listings.
type Filter struct {
	Limit  int
	Offset int
}
