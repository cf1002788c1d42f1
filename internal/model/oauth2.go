package model

import "time"

// RedirectURIEntry is one entry in a provider's redirect URI allow-list.
// Mode is either "strict" (byte-exact match) or "regex" (anchored fullmatch).
type RedirectURIEntry struct {
	Mode    string `json:"mode" db:"mode"`
	Pattern string `json:"pattern" db:"pattern"`
}

// ScopeMapping associates a scope identifier with a human-readable
// description shown on the consent screen.
type ScopeMapping struct {
	Scope       string `json:"scope" db:"scope"`
	Description string `json:"description" db:"description"`
}

// Provider is an OAuth2/OIDC relying party registration.
type Provider struct {
	ClientID            string             `json:"client_id" db:"client_id"`
	Name                string             `json:"name" db:"name"`
	SecretHash          string             `json:"-" db:"secret_hash"`
	RedirectURIs        []RedirectURIEntry `json:"redirect_uris" db:"redirect_uris"`
	ScopeMappings       []ScopeMapping     `json:"scope_mappings" db:"scope_mappings"`
	AuthorizationFlow   string             `json:"authorization_flow" db:"authorization_flow"`
	AccessCodeValidity  time.Duration      `json:"access_code_validity" db:"-"`
	AccessTokenValidity time.Duration      `json:"access_token_validity" db:"-"`
	SigningKeyID        string             `json:"signing_key_id" db:"signing_key_id"`
	CreatedAt           time.Time          `json:"created_at" db:"created_at"`
}

// ConfiguredScopes returns the set of scope identifiers a provider is
// configured to grant, independent of any human-readable description.
func (p *Provider) ConfiguredScopes() map[string]struct{} {
	set := make(map[string]struct{}, len(p.ScopeMappings))
	for _, m := range p.ScopeMappings {
		set[m.Scope] = struct{}{}
	}
	return set
}

// AuthorizationCode is a short-lived, single-use code exchanged at the
// token endpoint (out of scope here) for access/ID tokens.
type AuthorizationCode struct {
	Code                string    `json:"-" db:"code"`
	ClientID            string    `json:"-" db:"client_id"`
	UserID              string    `json:"-" db:"user_id"`
	RedirectURI         string    `json:"-" db:"redirect_uri"`
	Scope               []string  `json:"-" db:"scope"`
	Nonce               string    `json:"-" db:"nonce"`
	AuthTime            time.Time `json:"-" db:"auth_time"`
	ExpiresAt           time.Time `json:"-" db:"expires_at"`
	SessionRef          string    `json:"-" db:"session_ref"`
	CodeChallenge       string    `json:"-" db:"code_challenge"`
	CodeChallengeMethod string    `json:"-" db:"code_challenge_method"`
	CHash               string    `json:"-" db:"c_hash"`
	Used                bool      `json:"-" db:"used"`
	CreatedAt           time.Time `json:"-" db:"created_at"`
}

// AccessToken is an opaque bearer token minted directly by the
// authorization endpoint for the implicit and hybrid grants.
type AccessToken struct {
	Token      string    `json:"-" db:"token"`
	ClientID   string    `json:"-" db:"client_id"`
	UserID     string    `json:"-" db:"user_id"`
	Scope      []string  `json:"-" db:"scope"`
	AuthTime   time.Time `json:"-" db:"auth_time"`
	ExpiresAt  time.Time `json:"-" db:"expires_at"`
	SessionRef string    `json:"-" db:"session_ref"`
	ATHash     string    `json:"-" db:"at_hash"`
	CreatedAt  time.Time `json:"-" db:"created_at"`
}

// IDTokenClaims is the claim set signed into a compact JWS for the
// id_token response parameter.
type IDTokenClaims struct {
	Issuer   string `json:"iss"`
	Subject  string `json:"sub"`
	Audience string `json:"aud"`
	IssuedAt int64  `json:"iat"`
	Expiry   int64  `json:"exp"`
	AuthTime int64  `json:"auth_time,omitempty"`
	Nonce    string `json:"nonce,omitempty"`
	CHash    string `json:"c_hash,omitempty"`
	ATHash   string `json:"at_hash,omitempty"`
}

// SigningKey is an asymmetric key pair used to sign ID tokens, persisted
// so restarts don't invalidate tokens already handed to RPs.
type SigningKey struct {
	ID            string    `json:"id" db:"id"`
	Algorithm     string    `json:"algorithm" db:"algorithm"`
	PublicKeyPEM  string    `json:"public_key_pem" db:"public_key_pem"`
	PrivateKeyPEM string    `json:"-" db:"private_key_pem"`
	Active        bool      `json:"active" db:"active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ConsentRecord tracks a user's past grant of a scope set to a client,
// so a returning RP with prompt=consent omitted doesn't re-prompt.
type ConsentRecord struct {
	ClientID  string    `json:"client_id" db:"client_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Scope     []string  `json:"scope" db:"scope"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Identity is the authenticated end-user driving the flow, supplied by
// the external session/authentication collaborator — this service
// never creates or stores one, only reads it off the session.
type Identity struct {
	UserID   string
	LoginUID string
	AuthTime time.Time
}
