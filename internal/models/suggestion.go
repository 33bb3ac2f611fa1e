package models

import "time"

// Suggestion is a coordinator-submitted improvement proposal reviewed by
// an administrator. Transitions mirror LeaveRequest: pending to
// approved or rejected, exactly once.
type Suggestion struct {
	ID             int64        `db:"id" json:"id"`
	CoordinatorID  string       `db:"coordinator_id" json:"coordinator_id"`
	SuggestionText string       `db:"suggestion_text" json:"suggestion_text"`
	Status         ReviewStatus `db:"status" json:"status"`
	AdminComments  *string      `db:"admin_comments" json:"admin_comments,omitempty"`
	ProcessedBy    *string      `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt    *time.Time   `db:"processed_at" json:"processed_at,omitempty"`
	SubmittedAt    time.Time    `db:"submitted_at" json:"submitted_at"`
}

// SuggestionWithAuthor joins a suggestion with its author's identity for
// admin listings.
type SuggestionWithAuthor struct {
	Suggestion
	AuthorName  *string `db:"author_name" json:"author_name,omitempty"`
	AuthorEmail *string `db:"author_email" json:"author_email,omitempty"`
}

// SubmitSuggestionRequest is the coordinator payload for a suggestion.
type SubmitSuggestionRequest struct {
	SuggestionText string `json:"suggestion_text" validate:"required,max=1000"`
}
