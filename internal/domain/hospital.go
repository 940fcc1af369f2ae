package domain

import "time"

type Hospital struct {
	HospitalID string    `json:"id" dynamodbav:"hospital_id"`
	Name       string    `json:"name" dynamodbav:"name"`
	Address    string    `json:"address" dynamodbav:"address"`
	City       string    `json:"city" dynamodbav:"city"`
	State      string    `json:"state" dynamodbav:"state"`
	Pincode    string    `json:"pincode" dynamodbav:"pincode"`
	Phone      string    `json:"phone,omitempty" dynamodbav:"phone"`
	Email      string    `json:"email,omitempty" dynamodbav:"email"`
	License    string    `json:"license,omitempty" dynamodbav:"license"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type HospitalInput struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	License string `json:"license"`
}
