package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/flowgatex/identity-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Demo credentials accepted in mock mode. Development only.
var seedUsers = []struct {
	ID       string
	Email    string
	Password string
	First    string
	Last     string
	Phone    string
	Role     domain.Role
}{
	{"mock-demo-001", "demo@flowgatex.com", "demo123", "Demo", "User", "+1234567894", domain.RoleAttendee},
	{"mock-demo-organizer-001", "organizer@flowgatex.com", "demo123", "Demo", "Organizer", "+1234567895", domain.RoleOrganizer},
	{"mock-demo-admin-001", "admin@flowgatex.com", "demo123", "Demo", "Admin", "+1234567896", domain.RoleAdmin},
	{"mock-demo-superadmin-001", "superadmin@flowgatex.com", "demo123", "Demo", "Super Admin", "+1234567897", domain.RoleSuperAdmin},
}

var seedAuthCodes = []domain.AuthCode{
	{Code: "ADMIN-2026-FLOWGATEX", Role: domain.RoleAdmin, Label: "Admin Access", Enable: true},
	{Code: "ORG-KEC-2026", Role: domain.RoleOrganizer, Label: "KEC Organizer", Enable: true},
	{Code: "ORG-ACME-2026", Role: domain.RoleOrganizer, Label: "Acme Events Organizer", Enable: true},
}

// Seed loads the fixture accounts and authorization codes into the mock
// stores. Passwords are hashed here so real bcrypt comparison runs on login.
func Seed(ctx context.Context, users *UserStore, codes *AuthCodeStore) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.MinCost)
		if err != nil {
			slog.Warn("seed: hash password failed", "email", su.Email, "err", err)
			continue
		}
		phone := su.Phone
		u := &domain.User{
			UserID:        su.ID,
			Email:         su.Email,
			Phone:         &phone,
			PasswordHash:  string(hash),
			Role:          su.Role,
			FirstName:     su.First,
			LastName:      su.Last,
			EmailVerified: true,
			AuthProvider:  "local",
			Enable:        true,
			Consents:      domain.Consents{Terms: true},
			CreatedAt:     created,
			UpdatedAt:     time.Now().UTC(),
		}
		if err := users.Put(ctx, u); err != nil {
			slog.Warn("seed: put user failed", "email", su.Email, "err", err)
		}
	}

	now := time.Now().UTC()
	for _, c := range seedAuthCodes {
		c.CreatedAt = now
		cp := c
		if err := codes.Put(ctx, &cp); err != nil {
			slog.Warn("seed: put auth code failed", "code", c.Code, "err", err)
		}
	}
	slog.Info("mock stores seeded", "users", len(seedUsers), "auth_codes", len(seedAuthCodes))
}
