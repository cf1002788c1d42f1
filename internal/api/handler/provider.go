package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/hosting/internal/api/request"
	"github.com/edvin/hosting/internal/api/response"
	"github.com/edvin/hosting/internal/core"
	"github.com/edvin/hosting/internal/model"
)

// Provider handles the admin provider-registration surface
// (/admin/providers). Registration itself sits outside the
// authorization endpoint's own request/response handling, but something
// has to create the rows C1-C4 read, so this is the thin, scope-gated
// handler that does it.
type Provider struct {
	svc         *core.ProviderService
	signingKeys *core.SigningKeyService
}

func NewProvider(svc *core.ProviderService, signingKeys *core.SigningKeyService) *Provider {
	return &Provider{svc: svc, signingKeys: signingKeys}
}

// Create godoc
//
//	@Summary		Register an OAuth2/OIDC provider
//	@Tags			Providers
//	@Security		ApiKeyAuth
//	@Param			body body request.CreateProvider true "Provider details"
//	@Success		201 {object} map[string]any
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/admin/providers [post]
func (h *Provider) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateProvider
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := h.signingKeys.Active(r.Context())
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, "no signing key available")
		return
	}

	redirectURIs := make([]model.RedirectURIEntry, 0, len(req.RedirectURIs))
	for _, e := range req.RedirectURIs {
		redirectURIs = append(redirectURIs, model.RedirectURIEntry{Mode: e.Mode, Pattern: e.Pattern})
	}
	scopeMappings := make([]model.ScopeMapping, 0, len(req.ScopeMappings))
	for _, m := range req.ScopeMappings {
		scopeMappings = append(scopeMappings, model.ScopeMapping{Scope: m.Scope, Description: m.Description})
	}

	provider, secret, err := h.svc.Register(r.Context(), req.Name, redirectURIs, scopeMappings, key.ID, req.AuthorizationFlow)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"client_id":          provider.ClientID,
		"client_secret":      secret,
		"name":               provider.Name,
		"redirect_uris":      provider.RedirectURIs,
		"scope_mappings":     provider.ScopeMappings,
		"authorization_flow": provider.AuthorizationFlow,
		"created_at":         provider.CreatedAt,
	})
}

// List godoc
//
//	@Summary		List registered providers
//	@Tags			Providers
//	@Security		ApiKeyAuth
//	@Success		200 {object} []model.Provider
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/admin/providers [get]
func (h *Provider) List(w http.ResponseWriter, r *http.Request) {
	providers, err := h.svc.List(r.Context())
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, providers)
}

// Get godoc
//
//	@Summary		Get a registered provider
//	@Tags			Providers
//	@Security		ApiKeyAuth
//	@Param			client_id path string true "Client ID"
//	@Success		200 {object} model.Provider
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/admin/providers/{client_id} [get]
func (h *Provider) Get(w http.ResponseWriter, r *http.Request) {
	clientID, err := request.RequireID(chi.URLParam(r, "client_id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	provider, err := h.svc.Lookup(r.Context(), clientID)
	if err != nil || provider == nil {
		response.WriteError(w, http.StatusNotFound, "provider not found")
		return
	}
	response.WriteJSON(w, http.StatusOK, provider)
}
