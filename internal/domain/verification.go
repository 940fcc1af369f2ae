package domain

import "time"

// VerificationCode is an outstanding email verification code. At most one
// live code exists per identity; issuing again overwrites the previous one.
// ExpiresAt is a Unix timestamp so it can double as a DynamoDB TTL attribute.
type VerificationCode struct {
	Identity  string    `json:"identity" dynamodbav:"identity"`
	Code      string    `json:"code" dynamodbav:"code"`
	IssuedAt  time.Time `json:"issued_at" dynamodbav:"issued_at"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
