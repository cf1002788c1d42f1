package oauth2

import (
	"net/url"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/edvin/hosting/internal/model"
)

// forbiddenSchemes is checked after a redirect_uri has otherwise matched
// the provider's allow-list — a registered entry is not itself a
// guarantee of safety (e.g. a maliciously registered javascript: URI).
var forbiddenSchemes = map[string]struct{}{
	"javascript": {},
	"data":       {},
	"vbscript":   {},
}

// MatchRedirectURI is the RedirectURIMatcher (C2): a pure function
// deciding whether uri is permitted by entries. Regex entries are
// anchored to a full-string match; malformed regex entries are logged
// and skipped rather than treated as fatal.
func MatchRedirectURI(logger zerolog.Logger, uri string, entries []model.RedirectURIEntry) bool {
	for _, e := range entries {
		switch e.Mode {
		case "strict":
			if uri == e.Pattern {
				return true
			}
		case "regex":
			re, err := regexp.Compile("^(?:" + e.Pattern + ")$")
			if err != nil {
				logger.Warn().Str("pattern", e.Pattern).Err(err).Msg("redirect uri regex entry failed to compile")
				continue
			}
			if re.MatchString(uri) {
				return true
			}
		}
	}
	return false
}

// ValidateRedirectURI runs the full §4.1.2 validation pipeline, including
// auto-provisioning of an empty allow-list (preserved for backward
// compatibility, and logged as a warning each time). provision is
// called only when entries is empty, to persist the newly-allowed URI.
func ValidateRedirectURI(logger zerolog.Logger, uri string, entries []model.RedirectURIEntry, provision func(string) error) error {
	if uri == "" {
		return &RedirectUriError{RedirectURI: uri, Cause: CauseRedirectURIMissing}
	}

	if len(entries) == 0 {
		logger.Warn().Str("redirect_uri", uri).Msg("auto-provisioning redirect_uri for provider with empty allow-list")
		if provision != nil {
			if err := provision(uri); err != nil {
				return &OAuth2Error{Message: "auto-provision redirect_uri", Err: err}
			}
		}
	} else if !MatchRedirectURI(logger, uri, entries) {
		return &RedirectUriError{RedirectURI: uri, Cause: CauseRedirectURINoMatch}
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return &RedirectUriError{RedirectURI: uri, Cause: CauseRedirectURIForbiddenScheme}
	}
	if _, forbidden := forbiddenSchemes[parsed.Scheme]; forbidden {
		return &RedirectUriError{RedirectURI: uri, Cause: CauseRedirectURIForbiddenScheme}
	}

	return nil
}
