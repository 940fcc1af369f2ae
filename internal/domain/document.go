package domain

import "time"

// Document is a medical supporting document (lab report, compatibility
// certificate) stored in S3 with its metadata row in DynamoDB.
type Document struct {
	DocumentID  string    `json:"id" dynamodbav:"document_id"`
	Object      string    `json:"-" dynamodbav:"object"` // S3 key
	Name        string    `json:"name" dynamodbav:"name"`
	Type        string    `json:"type" dynamodbav:"type"`
	Size        int64     `json:"size" dynamodbav:"size"`
	Hash        string    `json:"hash" dynamodbav:"hash"`
	OwnerUserID string    `json:"owner_user_id" dynamodbav:"owner_user_id"`
	Enable      bool      `json:"-" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}
