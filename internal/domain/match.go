package domain

import "time"

// MatchType records how a match was proposed
type MatchType string

const (
	MatchTypeAIVisual      MatchType = "ai_visual"
	MatchTypeAIDescription MatchType = "ai_description"
	MatchTypeUserReported  MatchType = "user_reported"
)

// MatchStatus is the review state of a match
type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchConfirmed MatchStatus = "confirmed"
	MatchRejected  MatchStatus = "rejected"
)

// Valid reports whether s is a known match status
func (s MatchStatus) Valid() bool {
	return s == MatchPending || s == MatchConfirmed || s == MatchRejected
}

// Resolves reports whether a pending match may move to s
func (s MatchStatus) Resolves() bool {
	return s == MatchConfirmed || s == MatchRejected
}

// Match links a lost report to a found report
type Match struct {
	ID              string      `json:"id"`
	LostReportID    string      `json:"lostReportId"`
	FoundReportID   string      `json:"foundReportId"`
	SimilarityScore float64     `json:"similarityScore"`
	MatchType       MatchType   `json:"matchType"`
	Status          MatchStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// CreateMatchRequest is the input for recording a match
type CreateMatchRequest struct {
	LostReportID  string    `json:"lostItemId" binding:"required"`
	FoundReportID string    `json:"foundItemId" binding:"required"`
	Type          MatchType `json:"type,omitempty" binding:"omitempty,oneof=ai_visual ai_description user_reported"`
}

// MatchFilter narrows a match listing. An empty UserID lists every match.
type MatchFilter struct {
	UserID string
}
