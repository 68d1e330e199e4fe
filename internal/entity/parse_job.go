package entity

import (
	"time"

	"github.com/google/uuid"
)

// ParseJob records one attempt to turn a quote file into a draft.
type ParseJob struct {
	ID           uuid.UUID  `json:"id"`
	SourcePath   string     `json:"source_path"`
	Format       string     `json:"format"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	Pages        *int       `json:"pages,omitempty"`
	TextMethod   *string    `json:"text_method,omitempty"`
	DraftID      *uuid.UUID `json:"draft_id,omitempty"`
}
