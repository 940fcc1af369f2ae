package domain

import "time"

// Match statuses. A match starts pending; scoring moves it to approved or
// waitlist based on the scorer's decision label, and operators may override
// to any status (completed once the physical procedure occurs).
const (
	MatchStatusPending   = "pending"
	MatchStatusApproved  = "approved"
	MatchStatusWaitlist  = "waitlist"
	MatchStatusCompleted = "completed"
)

// ValidMatchStatus reports whether s is one of the known match statuses.
func ValidMatchStatus(s string) bool {
	switch s {
	case MatchStatusPending, MatchStatusApproved, MatchStatusWaitlist, MatchStatusCompleted:
		return true
	}
	return false
}

// Match is a proposed donor–recipient pairing. SurvivalScore,
// AllocationDecision and Explanation are written together on a successful
// scoring call and are never partially set.
type Match struct {
	MatchID            string    `json:"id" dynamodbav:"match_id"`
	DonorID            string    `json:"donor_id" dynamodbav:"donor_id"`
	RecipientID        string    `json:"recipient_id" dynamodbav:"recipient_id"`
	Status             string    `json:"status" dynamodbav:"status"`
	SurvivalScore      *float64  `json:"survival_score,omitempty" dynamodbav:"survival_score,omitempty"`
	AllocationDecision *string   `json:"allocation_decision,omitempty" dynamodbav:"allocation_decision,omitempty"`
	Explanation        *string   `json:"explanation,omitempty" dynamodbav:"explanation,omitempty"`
	CreatedAt          time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// Scored reports whether the scoring fields have been written.
func (m *Match) Scored() bool {
	return m.SurvivalScore != nil && m.AllocationDecision != nil && m.Explanation != nil
}

type CreateMatchRequest struct {
	DonorID     string `json:"donor_id" validate:"required"`
	RecipientID string `json:"recipient_id" validate:"required"`
}

type UpdateMatchStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
