package domain

import "time"

// User roles. Donors and recipients are the matchable identities; hospital
// accounts manage matches on their behalf.
const (
	RoleDonor     = "donor"
	RoleRecipient = "recipient"
	RoleHospital  = "hospital"
	RoleAdmin     = "admin"
)

type User struct {
	UserID         string    `json:"id" dynamodbav:"user_id"`
	Email          string    `json:"email" dynamodbav:"email"`
	PasswordHash   string    `json:"-" dynamodbav:"password_hash"`
	Role           string    `json:"role" dynamodbav:"role"`
	FirstName      string    `json:"first_name" dynamodbav:"first_name"`
	LastName       string    `json:"last_name" dynamodbav:"last_name"`
	Phone          *string   `json:"phone" dynamodbav:"phone"`
	Address        string    `json:"address,omitempty" dynamodbav:"address"`
	City           string    `json:"city,omitempty" dynamodbav:"city"`
	State          string    `json:"state,omitempty" dynamodbav:"state"`
	Pincode        string    `json:"pincode,omitempty" dynamodbav:"pincode"`
	BloodType      string    `json:"blood_type,omitempty" dynamodbav:"blood_type"`
	Age            int       `json:"age,omitempty" dynamodbav:"age"`
	Urgency        string    `json:"urgency,omitempty" dynamodbav:"urgency"` // recipients only: "low" | "medium" | "high"
	GeneticMarkers []string  `json:"genetic_markers,omitempty" dynamodbav:"genetic_markers"`
	MedicalHistory string    `json:"medical_history,omitempty" dynamodbav:"medical_history"`
	Allergies      string    `json:"allergies,omitempty" dynamodbav:"allergies"`
	Medications    string    `json:"medications,omitempty" dynamodbav:"medications"`
	EmailConfirmed bool      `json:"email_confirmed" dynamodbav:"email_confirmed"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

// RegisterRequest carries the registration payload. Code is the email
// verification code previously sent to Email; registration is rejected
// when it does not verify.
type RegisterRequest struct {
	Email          string   `json:"email" validate:"required,email"`
	Code           string   `json:"code" validate:"required,len=6,numeric"`
	Password       string   `json:"password" validate:"required,min=8,max=72"`
	Role           string   `json:"role" validate:"required,oneof=donor recipient hospital"`
	FirstName      string   `json:"first_name" validate:"required"`
	LastName       string   `json:"last_name" validate:"required"`
	Phone          *string  `json:"phone"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Pincode        string   `json:"pincode"`
	BloodType      string   `json:"blood_type"`
	Age            int      `json:"age" validate:"omitempty,gte=0,lte=130"`
	Urgency        string   `json:"urgency" validate:"omitempty,oneof=low medium high"`
	GeneticMarkers []string `json:"genetic_markers"`
	MedicalHistory string   `json:"medical_history"`
	Allergies      string   `json:"allergies"`
	Medications    string   `json:"medications"`
}

type UpdateUserRequest struct {
	FirstName      *string  `json:"first_name"`
	LastName       *string  `json:"last_name"`
	Phone          *string  `json:"phone"`
	Address        *string  `json:"address"`
	City           *string  `json:"city"`
	State          *string  `json:"state"`
	Pincode        *string  `json:"pincode"`
	BloodType      *string  `json:"blood_type"`
	Age            *int     `json:"age" validate:"omitempty,gte=0,lte=130"`
	Urgency        *string  `json:"urgency" validate:"omitempty,oneof=low medium high"`
	GeneticMarkers []string `json:"genetic_markers"`
	MedicalHistory *string  `json:"medical_history"`
	Allergies      *string  `json:"allergies"`
	Medications    *string  `json:"medications"`
}
