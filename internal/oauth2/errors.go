package oauth2

import "fmt"

// Well-known OAuth2/OIDC error codes an RP may receive.
const (
	ErrInvalidRequest          = "invalid_request"
	ErrUnsupportedResponseType = "unsupported_response_type"
	ErrInvalidScope            = "invalid_scope"
	ErrLoginRequired           = "login_required"
	ErrConsentRequired         = "consent_required"
	ErrServerError             = "server_error"
	ErrRequestNotSupported     = "request_not_supported"
)

// Internal causes, used for logs/telemetry — never placed on the wire.
const (
	CauseRedirectURIMissing         = "redirect_uri_missing"
	CauseRedirectURINoMatch         = "redirect_uri_no_match"
	CauseRedirectURIForbiddenScheme = "redirect_uri_forbidden_scheme"
	CauseNonceMissing               = "nonce_missing"
	CauseScopeOpenIDMissing         = "scope_openid_missing"
)

// ClientIdError means the client_id on the request does not match any
// registered provider. Discovered before a redirect_uri can be trusted,
// so it is always rendered as a bad-request page, never a redirect.
type ClientIdError struct {
	ClientID string
}

func (e *ClientIdError) Error() string {
	return fmt.Sprintf("unknown client_id %q", e.ClientID)
}

// RedirectUriError means redirect_uri was missing, matched no allow-list
// entry, or resolved to a forbidden scheme. Cause is for logs only.
type RedirectUriError struct {
	RedirectURI string
	Cause       string
}

func (e *RedirectUriError) Error() string {
	return fmt.Sprintf("redirect_uri error (%s): %q", e.Cause, e.RedirectURI)
}

// AuthorizeError is any RP-visible OAuth error. Once a trusted
// redirect_uri is known, every failure is carried as one of these so it
// can be delivered back to the RP instead of rendered as a local page.
type AuthorizeError struct {
	RedirectURI string
	State       string
	GrantType   string
	Code        string // one of the Err* constants
	Description string
	Cause       string // internal cause for logs, not wire-visible
}

func (e *AuthorizeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// NewAuthorizeError builds an AuthorizeError with the given wire-visible
// code and description, and internal-only cause for structured logging.
func NewAuthorizeError(redirectURI, state, grantType, code, description, cause string) *AuthorizeError {
	return &AuthorizeError{
		RedirectURI: redirectURI,
		State:       state,
		GrantType:   grantType,
		Code:        code,
		Description: description,
		Cause:       cause,
	}
}

// OAuth2Error is the base/internal fallback. Any error not recognized as
// one of the other variants is rendered to the RP as server_error.
type OAuth2Error struct {
	Message string
	Err     error
}

func (e *OAuth2Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *OAuth2Error) Unwrap() error { return e.Err }
