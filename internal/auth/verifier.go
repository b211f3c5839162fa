package auth

import (
	"context"
	"errors"

	"github.com/sentryvision/review-service/internal/domain"
)

var (
	// ErrInvalidToken is returned when token validation fails
	ErrInvalidToken = errors.New("invalid token")
	// ErrInactiveUser is returned for tokens of deactivated accounts
	ErrInactiveUser = errors.New("user account is inactive")
)

// TokenVerifier resolves a bearer token to a user identity. Any error
// means the caller must treat the credential as invalid.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.User, error)
}
