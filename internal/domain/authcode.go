package domain

import "time"

// AuthCode is a shared secret gating organizer/admin self-registration.
// Codes are stored uppercased; lookups normalize the same way.
type AuthCode struct {
	Code      string    `json:"code" dynamodbav:"code"`
	Role      Role      `json:"role" dynamodbav:"role"`
	Label     string    `json:"label" dynamodbav:"label"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

// AuthCodeInput is the admin payload for creating an authorization code.
type AuthCodeInput struct {
	Code  string `json:"code" validate:"required"`
	Role  string `json:"role" validate:"required"`
	Label string `json:"label" validate:"required"`
}
