package domain

import "time"

// Consents holds the signup consent checkboxes. Terms is mandatory; the rest
// are marketing preferences.
type Consents struct {
	Terms     bool `json:"terms" dynamodbav:"terms"`
	Marketing bool `json:"marketing" dynamodbav:"marketing"`
	Whatsapp  bool `json:"whatsapp" dynamodbav:"whatsapp"`
}

type User struct {
	UserID         string     `json:"id" dynamodbav:"user_id"`
	Email          string     `json:"email" dynamodbav:"email"`
	Phone          *string    `json:"phone" dynamodbav:"phone"`
	PasswordHash   string     `json:"-" dynamodbav:"password_hash"`
	Role           Role       `json:"role" dynamodbav:"role"`
	FirstName      string     `json:"first_name" dynamodbav:"first_name"`
	LastName       string     `json:"last_name" dynamodbav:"last_name"`
	PhotoURL       string     `json:"photo_url,omitempty" dynamodbav:"photo_url"`
	Gender         string     `json:"gender,omitempty" dynamodbav:"gender"`
	Birthday       time.Time  `json:"birthday" dynamodbav:"birthday"`
	Organization   string     `json:"organization,omitempty" dynamodbav:"organization"`
	Department     string     `json:"department,omitempty" dynamodbav:"department"`
	Consents       Consents   `json:"consents" dynamodbav:"consents"`
	LiveLocation   bool       `json:"live_location_consent" dynamodbav:"live_location_consent"`
	EmailVerified  bool       `json:"email_verified" dynamodbav:"email_verified"`
	PhoneConfirmed bool       `json:"phone_confirmed" dynamodbav:"phone_confirmed"`
	AuthProvider   string     `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub      string     `json:"-"                       dynamodbav:"google_sub"`
	Enable         bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt      time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// DisplayName is the name shown in session snapshots and profile documents.
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// CreateUserRequest is the POST /auth/register payload.
type CreateUserRequest struct {
	Role              string   `json:"role" validate:"required"`
	FirstName         string   `json:"first_name" validate:"required"`
	LastName          string   `json:"last_name" validate:"required"`
	Email             string   `json:"email" validate:"required,email"`
	DOB               string   `json:"dob" validate:"required"` // YYYY-MM-DD
	Password          string   `json:"password" validate:"required,max=72"`
	Mobile            *string  `json:"mobile"`
	MobileDial        string   `json:"mobile_dial"` // e.g. "+91"; defaults to +91 when mobile is set
	Gender            string   `json:"gender" validate:"omitempty,oneof=male female non-binary prefer-not-to-say"`
	LiveLocation      bool     `json:"live_location_consent"`
	Organization      string   `json:"organization"`
	Department        string   `json:"department"`
	AuthorizationCode string   `json:"authorization_code"`
	Consents          Consents `json:"consents"`
}

// UpdateUserRequest is the PUT /users/{id} payload. Nil fields are untouched.
type UpdateUserRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Phone        *string `json:"phone"`
	Gender       *string `json:"gender"`
	Organization *string `json:"organization"`
	Department   *string `json:"department"`
	Role         *string `json:"role"`
	Enable       *bool   `json:"enable"`
}

// Profile is the slice of the user record the session bridge watches: role
// and display attributes, separate from the bare credential. It is the Go
// rendition of the per-user profile document.
type Profile struct {
	UserID      string `json:"user_id" dynamodbav:"user_id"`
	Role        Role   `json:"role" dynamodbav:"role"`
	DisplayName string `json:"display_name" dynamodbav:"display_name"`
	PhotoURL    string `json:"photo_url" dynamodbav:"photo_url"`
	Phone       string `json:"phone" dynamodbav:"phone"`
}

// ProfileOf projects a user record onto its profile document.
func ProfileOf(u *User) *Profile {
	p := &Profile{
		UserID:      u.UserID,
		Role:        u.Role,
		DisplayName: u.DisplayName(),
		PhotoURL:    u.PhotoURL,
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	return p
}
