package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/edvin/hosting/internal/model"
	"github.com/edvin/hosting/internal/platform"
)

// ErrProviderNotFound is returned by ProviderService.Lookup when no
// provider matches the given client_id.
var ErrProviderNotFound = errors.New("provider not found")

// ProviderService persists OAuth2/OIDC relying-party registrations.
type ProviderService struct {
	db DB
}

func NewProviderService(db DB) *ProviderService {
	return &ProviderService{db: db}
}

// Lookup satisfies oauth2.ProviderLookup. A missing row is reported as
// (nil, nil), matching ProviderLookup's "not found" contract.
func (s *ProviderService) Lookup(ctx context.Context, clientID string) (*model.Provider, error) {
	var p model.Provider
	var accessCodeSeconds, accessTokenSeconds int
	err := s.db.QueryRow(ctx,
		`SELECT client_id, name, secret_hash, redirect_uris, scope_mappings, authorization_flow,
		        access_code_validity_seconds, access_token_validity_seconds,
		        signing_key_id, created_at
		   FROM providers WHERE client_id = $1`, clientID,
	).Scan(&p.ClientID, &p.Name, &p.SecretHash, &p.RedirectURIs, &p.ScopeMappings, &p.AuthorizationFlow,
		&accessCodeSeconds, &accessTokenSeconds, &p.SigningKeyID, &p.CreatedAt)
	if err != nil {
		return nil, nil
	}
	p.AccessCodeValidity = secondsToDuration(accessCodeSeconds)
	p.AccessTokenValidity = secondsToDuration(accessTokenSeconds)
	return &p, nil
}

// ProvisionRedirectURI implements the §4.1.2 auto-provisioning
// read-modify-write: appends uri in strict mode to a provider whose
// allow-list was empty, so the next lookup of this client_id sees it as
// a registered entry instead of re-provisioning on every request. The
// WHERE clause on redirect_uris re-checks emptiness at write time, so a
// racing second request provisioning a different URI first loses the
// append rather than silently widening the allow-list to both URIs.
func (s *ProviderService) ProvisionRedirectURI(ctx context.Context, provider *model.Provider, uri string) error {
	entry := model.RedirectURIEntry{Mode: "strict", Pattern: uri}
	entries := []model.RedirectURIEntry{entry}
	_, err := s.db.Exec(ctx,
		`UPDATE providers SET redirect_uris = $2
		 WHERE client_id = $1 AND redirect_uris = '[]'::jsonb`,
		provider.ClientID, entries,
	)
	if err != nil {
		return fmt.Errorf("provision redirect_uri: %w", err)
	}
	provider.RedirectURIs = append(provider.RedirectURIs, entry)
	return nil
}

// Register creates a new provider with a bcrypt-hashed client secret,
// returning the plaintext secret once.
func (s *ProviderService) Register(ctx context.Context, name string, redirectURIs []model.RedirectURIEntry, scopeMappings []model.ScopeMapping, signingKeyID, authorizationFlow string) (*model.Provider, string, error) {
	clientID := platform.NewName("client")
	rawSecret := make([]byte, 32)
	if _, err := rand.Read(rawSecret); err != nil {
		return nil, "", fmt.Errorf("generate client secret: %w", err)
	}
	secret := hex.EncodeToString(rawSecret)
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash client secret: %w", err)
	}

	if authorizationFlow == "" {
		authorizationFlow = "default-authorization-flow"
	}
	p := &model.Provider{
		ClientID:            clientID,
		Name:                name,
		SecretHash:          string(hash),
		RedirectURIs:        redirectURIs,
		ScopeMappings:       scopeMappings,
		AuthorizationFlow:   authorizationFlow,
		AccessCodeValidity:  tenMinutes,
		AccessTokenValidity: oneHour,
		SigningKeyID:        signingKeyID,
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO providers (client_id, name, secret_hash, redirect_uris, scope_mappings, authorization_flow,
		                        access_code_validity_seconds, access_token_validity_seconds, signing_key_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
		p.ClientID, p.Name, p.SecretHash, p.RedirectURIs, p.ScopeMappings, p.AuthorizationFlow,
		int(p.AccessCodeValidity.Seconds()), int(p.AccessTokenValidity.Seconds()), p.SigningKeyID,
	)
	if err != nil {
		return nil, "", fmt.Errorf("insert provider: %w", err)
	}
	err = s.db.QueryRow(ctx, `SELECT created_at FROM providers WHERE client_id = $1`, p.ClientID).Scan(&p.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("get provider created_at: %w", err)
	}
	return p, secret, nil
}

func (s *ProviderService) List(ctx context.Context) ([]*model.Provider, error) {
	rows, err := s.db.Query(ctx,
		`SELECT client_id, name, redirect_uris, scope_mappings, authorization_flow,
		        access_code_validity_seconds, access_token_validity_seconds, signing_key_id, created_at
		   FROM providers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	var out []*model.Provider
	for rows.Next() {
		var p model.Provider
		var accessCodeSeconds, accessTokenSeconds int
		if err := rows.Scan(&p.ClientID, &p.Name, &p.RedirectURIs, &p.ScopeMappings, &p.AuthorizationFlow,
			&accessCodeSeconds, &accessTokenSeconds, &p.SigningKeyID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		p.AccessCodeValidity = secondsToDuration(accessCodeSeconds)
		p.AccessTokenValidity = secondsToDuration(accessTokenSeconds)
		out = append(out, &p)
	}
	return out, rows.Err()
}
