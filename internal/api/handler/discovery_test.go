package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/hosting/internal/core"
)

func TestDiscoveryMetadata_OmitsUnimplementedEndpoints(t *testing.T) {
	h := &Discovery{Logger: zerolog.Nop(), IssuerURL: "https://auth.example"}
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/.well-known/openid-configuration", nil)

	h.Metadata(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://auth.example", body["issuer"])
	assert.Equal(t, "https://auth.example/authorize", body["authorization_endpoint"])
	_, hasTokenEndpoint := body["token_endpoint"]
	assert.False(t, hasTokenEndpoint, "the token endpoint is not implemented and must not be advertised")
	_, hasUserinfo := body["userinfo_endpoint"]
	assert.False(t, hasUserinfo, "the userinfo endpoint is not implemented and must not be advertised")
}

func TestDiscoveryJWKS_RendersActiveKey(t *testing.T) {
	db := newActiveSigningKeyDB()
	h := &Discovery{Logger: zerolog.Nop(), SigningKeys: core.NewSigningKeyService(db)}
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/oidc/jwks", nil)

	h.JWKS(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "keys")
}
