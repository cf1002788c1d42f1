package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/edvin/hosting/internal/model"
)

// AccessTokenService mints opaque bearer tokens for the implicit and
// hybrid grants directly from the authorization endpoint.
type AccessTokenService struct {
	db DB
}

func NewAccessTokenService(db DB) *AccessTokenService {
	return &AccessTokenService{db: db}
}

func (s *AccessTokenService) Create(ctx context.Context, clientID, userID, sessionRef string, scope []string, authTime time.Time, validity time.Duration) (*model.AccessToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	token := &model.AccessToken{
		Token:      hex.EncodeToString(raw),
		ClientID:   clientID,
		UserID:     userID,
		Scope:      scope,
		AuthTime:   authTime,
		ExpiresAt:  time.Now().Add(validity),
		SessionRef: sessionRef,
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO access_tokens (token, client_id, user_id, scope, auth_time, expires_at, session_ref, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,now())`,
		token.Token, token.ClientID, token.UserID, token.Scope, token.AuthTime, token.ExpiresAt, token.SessionRef,
	)
	if err != nil {
		return nil, fmt.Errorf("insert access token: %w", err)
	}
	return token, nil
}
