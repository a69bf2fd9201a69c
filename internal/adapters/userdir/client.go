package userdir

import (
	"context"
	"net/url"

	"eventparticipation/internal/adapters/upstream"
	"eventparticipation/internal/domain"
)

// ServiceName labels user directory calls in errors, spans and metrics.
const ServiceName = "user_directory"

type userResponse struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type httpDirectory struct {
	client *upstream.Client
}

// NewHTTPDirectory returns a UserDirectory backed by GET {base}/users/{id}.
func NewHTTPDirectory(client *upstream.Client) domain.UserDirectory {
	return &httpDirectory{client: client}
}

func (d *httpDirectory) GetUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var resp userResponse
	if err := d.client.GetJSON(ctx, "/users/"+url.PathEscape(userID), &resp); err != nil {
		return nil, err
	}
	return &domain.UserProfile{
		ID:          userID,
		Name:        resp.Username,
		Email:       resp.Email,
		PhoneNumber: resp.PhoneNumber,
	}, nil
}
