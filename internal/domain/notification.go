package domain

import "time"

// Notification is an in-app message for a user, written by the match service
// when a pairing involving them is scored.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	Body           string    `json:"body" dynamodbav:"body"`
	MatchID        string    `json:"match_id,omitempty" dynamodbav:"match_id"`
	Readed         int       `json:"readed" dynamodbav:"readed"` // 0 = unread, 1 = read
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
}
