// Package oauth2 implements the authorization-request state machine and
// response builder described by components C1-C3 and C6: parsing and
// validating the request envelope, matching redirect URIs, resolving
// scopes, and serializing the final response.
package oauth2

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edvin/hosting/internal/model"
)

const (
	GrantAuthorizationCode = "authorization_code"
	GrantImplicit          = "implicit"
	GrantHybrid            = "hybrid"
)

const (
	ResponseModeQuery    = "query"
	ResponseModeFragment = "fragment"
	ResponseModeFormPost = "form_post"
)

var allowedPrompts = map[string]struct{}{"none": {}, "consent": {}, "login": {}}

// RequestParams is the validated authorization request (component C1).
// It is constructed by a validating factory: every RequestParams a
// caller ever sees already satisfies the grant- and
// response_mode-resolution invariants ParseParams enforces.
type RequestParams struct {
	ClientID            string
	RedirectURI         string
	ResponseType        string
	ResponseMode        string
	GrantType           string
	Scope               []string
	State               string
	Nonce               string
	Prompt              []string
	MaxAge              *int
	CodeChallenge       string
	CodeChallengeMethod string
	GithubCompat        bool

	Provider *model.Provider
}

// HasPrompt reports whether p is requested.
func (rp *RequestParams) HasPrompt(p string) bool {
	for _, v := range rp.Prompt {
		if v == p {
			return true
		}
	}
	return false
}

// WantsCode reports whether the resolved grant produces an authorization code.
func (rp *RequestParams) WantsCode() bool {
	return rp.GrantType == GrantAuthorizationCode || rp.GrantType == GrantHybrid
}

// responseTypeTokens is keyed by the sorted, space-joined token set so
// "id_token token" and "token id_token" resolve identically.
func responseTypeTokens(responseType string) string {
	tokens := strings.Fields(responseType)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func grantForResponseType(responseType string) string {
	switch responseTypeTokens(responseType) {
	case "code":
		return GrantAuthorizationCode
	case "id_token", "id_token token":
		return GrantImplicit
	case "code token", "code id_token", "code id_token token":
		return GrantHybrid
	default:
		return ""
	}
}

func wantsIDToken(responseType string) bool {
	for _, t := range strings.Fields(responseType) {
		if t == "id_token" {
			return true
		}
	}
	return false
}

// ProviderLookup resolves a provider by client_id. A nil, non-error
// return means "not found".
type ProviderLookup func(clientID string) (*model.Provider, error)

// ProvisionRedirectURI persists uri as the (only) allow-list entry for a
// provider whose allow-list was empty, auto-provisioning it on first use.
type ProvisionRedirectURI func(provider *model.Provider, uri string) error

// ParseParams implements C1: reads parameters from the POST body or the
// query string, resolves the provider, and runs every validation in the
// order the source does — redirect_uri, then grant, then scope, then the
// JAR-not-supported check, then nonce, then PKCE method.
func ParseParams(logger zerolog.Logger, r *http.Request, lookup ProviderLookup, provision ProvisionRedirectURI) (*RequestParams, error) {
	values := r.URL.Query()
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			values = r.Form
		}
	}

	rp := &RequestParams{
		ClientID:            values.Get("client_id"),
		RedirectURI:         values.Get("redirect_uri"),
		ResponseType:        values.Get("response_type"),
		ResponseMode:        values.Get("response_mode"),
		State:               values.Get("state"),
		Nonce:               values.Get("nonce"),
		CodeChallenge:       values.Get("code_challenge"),
		CodeChallengeMethod: values.Get("code_challenge_method"),
	}
	if rp.CodeChallengeMethod == "" {
		rp.CodeChallengeMethod = "plain"
	}
	if scope := values.Get("scope"); scope != "" {
		rp.Scope = strings.Fields(scope)
	}
	if prompt := values.Get("prompt"); prompt != "" {
		for _, p := range strings.Fields(prompt) {
			if _, ok := allowedPrompts[p]; ok {
				rp.Prompt = append(rp.Prompt, p)
			}
		}
	}
	if maxAge := values.Get("max_age"); maxAge != "" {
		if n, err := strconv.Atoi(maxAge); err == nil {
			rp.MaxAge = &n
		}
	}
	rp.GithubCompat = strings.HasPrefix(r.URL.Path, "/login/oauth/authorize")

	provider, err := lookup(rp.ClientID)
	if err != nil || provider == nil {
		return nil, &ClientIdError{ClientID: rp.ClientID}
	}
	rp.Provider = provider

	if err := ValidateRedirectURI(logger, rp.RedirectURI, provider.RedirectURIs, func(uri string) error {
		if provision == nil {
			return nil
		}
		return provision(provider, uri)
	}); err != nil {
		return nil, err
	}

	rp.GrantType = grantForResponseType(rp.ResponseType)
	if rp.GrantType == "" {
		logger.Warn().Str("response_type", rp.ResponseType).Msg("invalid response type")
		return nil, NewAuthorizeError(rp.RedirectURI, rp.State, "", ErrUnsupportedResponseType, "unsupported response_type", "")
	}
	rp.ResponseMode = ResolveResponseMode(rp.ResponseMode, rp.GrantType)

	scope, err := ResolveScope(rp.Scope, provider, rp.GithubCompat, rp.WantsCode(), rp.GrantType == GrantHybrid || wantsIDToken(rp.ResponseType))
	if err != nil {
		ae := err.(*AuthorizeError)
		ae.RedirectURI, ae.State, ae.GrantType = rp.RedirectURI, rp.State, rp.GrantType
		return nil, ae
	}
	rp.Scope = scope

	if values.Get("request") != "" {
		return nil, NewAuthorizeError(rp.RedirectURI, rp.State, rp.GrantType, ErrRequestNotSupported, "request object (JAR) is not supported", "")
	}

	if err := checkNonce(rp); err != nil {
		return nil, err
	}

	if rp.CodeChallenge != "" && rp.CodeChallengeMethod != "plain" && rp.CodeChallengeMethod != "S256" {
		return nil, NewAuthorizeError(rp.RedirectURI, rp.State, rp.GrantType, ErrInvalidRequest,
			"unsupported code_challenge_method "+rp.CodeChallengeMethod, "")
	}

	return rp, nil
}

// ResolveResponseMode applies the default response_mode for the grant
// type and silently downgrades an out-of-range caller-supplied value
// instead of erroring.
func ResolveResponseMode(mode, grantType string) string {
	switch mode {
	case ResponseModeQuery, ResponseModeFragment, ResponseModeFormPost:
		return mode
	default:
		if grantType == GrantImplicit || grantType == GrantHybrid {
			return ResponseModeFragment
		}
		return ResponseModeQuery
	}
}

func checkNonce(rp *RequestParams) error {
	if rp.GrantType != GrantImplicit && rp.GrantType != GrantHybrid {
		return nil
	}
	if !wantsIDToken(rp.ResponseType) {
		return nil
	}
	if !contains(rp.Scope, "openid") {
		return nil
	}
	if rp.Nonce == "" {
		return NewAuthorizeError(rp.RedirectURI, rp.State, rp.GrantType, ErrInvalidRequest, "nonce is required", CauseNonceMissing)
	}
	return nil
}
