package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/hosting/internal/api/response"
	"github.com/edvin/hosting/internal/core"
	"github.com/edvin/hosting/internal/oauth2"
)

// Discovery serves the OpenID Connect discovery document and JWKS.
// Dynamic client registration, the token endpoint, and the userinfo
// endpoint are out of scope for this service, so those URLs are
// omitted from the document rather than advertised and then
// unimplemented.
type Discovery struct {
	Logger      zerolog.Logger
	SigningKeys *core.SigningKeyService
	IssuerURL   string
}

// Metadata godoc
//
//	@Summary		OpenID Connect discovery document
//	@Tags			OIDC
//	@Success		200 {object} map[string]any
//	@Router			/.well-known/openid-configuration [get]
func (h *Discovery) Metadata(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"issuer":                                h.IssuerURL,
		"authorization_endpoint":                h.IssuerURL + "/authorize",
		"jwks_uri":                               h.IssuerURL + "/oidc/jwks",
		"response_types_supported":               []string{"code", "id_token", "id_token token", "code token", "code id_token", "code id_token token"},
		"response_modes_supported":                []string{oauth2.ResponseModeQuery, oauth2.ResponseModeFragment, oauth2.ResponseModeFormPost},
		"grant_types_supported":                  []string{oauth2.GrantAuthorizationCode, oauth2.GrantImplicit, oauth2.GrantHybrid},
		"subject_types_supported":                []string{"public"},
		"id_token_signing_alg_values_supported":  []string{"RS256"},
		"scopes_supported":                       []string{"openid", "profile", "offline_access"},
		"code_challenge_methods_supported":        []string{"plain", "S256"},
		"prompt_values_supported":                []string{"none", "login", "consent"},
		"claims_supported":                        []string{"iss", "sub", "aud", "exp", "iat", "auth_time", "nonce", "c_hash", "at_hash"},
	})
}

// JWKS godoc
//
//	@Summary		JSON Web Key Set
//	@Tags			OIDC
//	@Success		200 {object} map[string]any
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/oidc/jwks [get]
func (h *Discovery) JWKS(w http.ResponseWriter, r *http.Request) {
	key, err := h.SigningKeys.Active(r.Context())
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, "no signing key available")
		return
	}
	jwk, err := oauth2.PublicJWK(key)
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to render JWKS")
		response.WriteError(w, http.StatusInternalServerError, "failed to render signing key")
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"keys": []any{jwk}})
}
