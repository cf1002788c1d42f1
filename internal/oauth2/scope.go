package oauth2

import "github.com/edvin/hosting/internal/model"

// githubCompatScopes are pseudo-scopes accepted only on the GitHub-OAuth-
// compatible route variant; they're excluded from the provider-configured
// subset check there.
var githubCompatScopes = map[string]struct{}{
	"user":       {},
	"user:email": {},
	"repo":       {},
}

// ResolveScope is the ScopePolicy (C3): resolves the authoritative scope
// set for a provider from its scope mappings, given the caller-requested
// set. grantHasCode/grantWantsIDToken describe the resolved grant type.
func ResolveScope(requested []string, provider *model.Provider, githubCompat bool, grantHasCode, grantWantsIDToken bool) ([]string, error) {
	configured := provider.ConfiguredScopes()

	if len(requested) == 0 {
		resolved := make([]string, 0, len(provider.ScopeMappings))
		for _, m := range provider.ScopeMappings {
			resolved = append(resolved, m.Scope)
		}
		requested = resolved
	} else {
		requested = intersect(requested, configured, githubCompat)
	}

	if !contains(requested, "openid") && grantWantsIDToken {
		return nil, &AuthorizeError{Code: ErrInvalidScope, Description: "scope must include openid", Cause: CauseScopeOpenIDMissing}
	}

	if !grantHasCode {
		requested = remove(requested, "offline_access")
	}

	return requested, nil
}

// Descriptions returns the human-readable description for each scope in
// set, in provider-configured order, for consent-screen display.
func Descriptions(set []string, provider *model.Provider) []model.ScopeMapping {
	wanted := make(map[string]struct{}, len(set))
	for _, s := range set {
		wanted[s] = struct{}{}
	}
	out := make([]model.ScopeMapping, 0, len(set))
	for _, m := range provider.ScopeMappings {
		if _, ok := wanted[m.Scope]; ok {
			out = append(out, m)
		}
	}
	return out
}

func intersect(requested []string, configured map[string]struct{}, githubCompat bool) []string {
	out := make([]string, 0, len(requested))
	for _, s := range requested {
		if githubCompat {
			if _, isCompat := githubCompatScopes[s]; isCompat {
				out = append(out, s)
				continue
			}
		}
		if _, ok := configured[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func remove(set []string, v string) []string {
	out := make([]string, 0, len(set))
	for _, s := range set {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
