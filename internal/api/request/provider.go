package request

// RedirectURIEntry is one entry of a CreateProvider request's allow-list.
type RedirectURIEntry struct {
	Mode    string `json:"mode" validate:"required,oneof=strict regex"`
	Pattern string `json:"pattern" validate:"required"`
}

// ScopeMapping is one entry of a CreateProvider request's scope table.
type ScopeMapping struct {
	Scope       string `json:"scope" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// CreateProvider holds the request body for registering a new
// OAuth2/OIDC relying party.
type CreateProvider struct {
	Name              string             `json:"name" validate:"required,min=1,max=255"`
	RedirectURIs      []RedirectURIEntry `json:"redirect_uris" validate:"omitempty,dive"`
	ScopeMappings     []ScopeMapping     `json:"scope_mappings" validate:"required,min=1,dive"`
	AuthorizationFlow string             `json:"authorization_flow" validate:"omitempty,max=255"`
}
