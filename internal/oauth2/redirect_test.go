package oauth2

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/hosting/internal/model"
)

func TestMatchRedirectURI_Strict(t *testing.T) {
	entries := []model.RedirectURIEntry{{Mode: "strict", Pattern: "https://rp.example/cb"}}
	assert.True(t, MatchRedirectURI(zerolog.Nop(), "https://rp.example/cb", entries))
	assert.False(t, MatchRedirectURI(zerolog.Nop(), "https://rp.example/cb/", entries))
}

func TestMatchRedirectURI_Regex(t *testing.T) {
	entries := []model.RedirectURIEntry{{Mode: "regex", Pattern: `https://.*\.rp\.example/cb`}}
	assert.True(t, MatchRedirectURI(zerolog.Nop(), "https://us.rp.example/cb", entries))
	assert.False(t, MatchRedirectURI(zerolog.Nop(), "https://us.rp.example/cb/extra", entries))
}

func TestMatchRedirectURI_MalformedRegexSkipped(t *testing.T) {
	entries := []model.RedirectURIEntry{
		{Mode: "regex", Pattern: "("},
		{Mode: "strict", Pattern: "https://rp.example/cb"},
	}
	assert.True(t, MatchRedirectURI(zerolog.Nop(), "https://rp.example/cb", entries))
}

func TestValidateRedirectURI_Missing(t *testing.T) {
	err := ValidateRedirectURI(zerolog.Nop(), "", nil, nil)
	require.Error(t, err)
	var rerr *RedirectUriError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, CauseRedirectURIMissing, rerr.Cause)
}

func TestValidateRedirectURI_AutoProvisionsEmptyAllowList(t *testing.T) {
	var provisioned string
	err := ValidateRedirectURI(zerolog.Nop(), "https://rp.example/cb", nil, func(uri string) error {
		provisioned = uri
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "https://rp.example/cb", provisioned)
}

func TestValidateRedirectURI_NoMatch(t *testing.T) {
	entries := []model.RedirectURIEntry{{Mode: "strict", Pattern: "https://rp.example/cb"}}
	err := ValidateRedirectURI(zerolog.Nop(), "https://evil.example/cb", entries, nil)
	require.Error(t, err)
	var rerr *RedirectUriError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, CauseRedirectURINoMatch, rerr.Cause)
}

func TestValidateRedirectURI_ForbiddenSchemeEvenWhenRegistered(t *testing.T) {
	// S3: a maliciously registered javascript: URI still fails the forbidden-scheme check.
	entries := []model.RedirectURIEntry{{Mode: "strict", Pattern: "javascript:alert(1)"}}
	err := ValidateRedirectURI(zerolog.Nop(), "javascript:alert(1)", entries, nil)
	require.Error(t, err)
	var rerr *RedirectUriError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, CauseRedirectURIForbiddenScheme, rerr.Cause)
}
