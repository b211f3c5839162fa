package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sentryvision/review-service/internal/domain"
)

// Client validates JWTs locally, then resolves the user against the auth
// service. Both steps must succeed: no connection without a confirmed
// identity.
type Client struct {
	baseURL string
	secret  []byte
	httpc   *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL, secret string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		secret:  []byte(secret),
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Verify implements TokenVerifier
func (c *Client) Verify(ctx context.Context, token string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	user, err := c.fetchUser(ctx, token)
	if err != nil {
		c.logger.Warn("auth service lookup failed", slog.Any("error", err))
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return user, nil
}

func (c *Client) fetchUser(ctx context.Context, token string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/me", nil)
	if err != nil {
		return nil, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service returned %d: %w", resp.StatusCode, ErrInvalidToken)
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if user.ID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	return &user, nil
}
