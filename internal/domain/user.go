package domain

import "context"

// UserProfile is the registrant data resolved from the user directory.
type UserProfile struct {
	ID          string `json:"id"`
	Name        string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// UserDirectory resolves a user identifier to a profile. Read-only.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*UserProfile, error)
}

// Principal is the identity carried by a verified bearer token.
type Principal struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the principal carries role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenVerifier verifies a token issued by the auth service.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}
