package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/edvin/hosting/internal/model"
)

// AuthCodeService persists authorization codes for the authorization
// code grant. The token endpoint that exchanges these is out of this
// service's scope; Create only mints and stores.
type AuthCodeService struct {
	db DB
}

func NewAuthCodeService(db DB) *AuthCodeService {
	return &AuthCodeService{db: db}
}

// Create mints a 128-bit random code, persists it, and returns the
// populated record. Persistence happens before the caller redirects, so
// a racing token-endpoint request always sees a row if it sees the code
// at all.
func (s *AuthCodeService) Create(ctx context.Context, clientID, userID, redirectURI, sessionRef string, scope []string, nonce string, authTime time.Time, validity time.Duration, codeChallenge, codeChallengeMethod string) (*model.AuthorizationCode, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate authorization code: %w", err)
	}
	code := &model.AuthorizationCode{
		Code:                hex.EncodeToString(raw),
		ClientID:            clientID,
		UserID:              userID,
		RedirectURI:         redirectURI,
		Scope:               scope,
		Nonce:               nonce,
		AuthTime:            authTime,
		ExpiresAt:           time.Now().Add(validity),
		SessionRef:          sessionRef,
		CodeChallenge:       codeChallenge,
		CodeChallengeMethod: codeChallengeMethod,
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO authorization_codes
		   (code, client_id, user_id, redirect_uri, scope, nonce, auth_time, expires_at,
		    session_ref, code_challenge, code_challenge_method, used, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,false,now())`,
		code.Code, code.ClientID, code.UserID, code.RedirectURI, code.Scope, code.Nonce,
		code.AuthTime, code.ExpiresAt, code.SessionRef, code.CodeChallenge, code.CodeChallengeMethod,
	)
	if err != nil {
		return nil, fmt.Errorf("insert authorization code: %w", err)
	}
	return code, nil
}
