package oauth2

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliver_Query(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := NewPayload("xyz").Set("code", "abc123")
	err := Deliver(rec, "https://rp.example/cb?foo=bar", ResponseModeQuery, payload)
	require.NoError(t, err)
	assert.Equal(t, 302, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "bar", loc.Query().Get("foo"))
	assert.Equal(t, "abc123", loc.Query().Get("code"))
	assert.Equal(t, "xyz", loc.Query().Get("state"))
}

func TestDeliver_Fragment(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := NewPayload("xyz").Set("access_token", "tok")
	err := Deliver(rec, "https://rp.example/cb", ResponseModeFragment, payload)
	require.NoError(t, err)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	frag, err := url.ParseQuery(loc.Fragment)
	require.NoError(t, err)
	assert.Equal(t, "tok", frag.Get("access_token"))
	assert.Equal(t, "xyz", frag.Get("state"))
	assert.Empty(t, loc.RawQuery)
}

func TestDeliver_FormPost(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := NewPayload("xyz").Set("code", "abc123")
	err := Deliver(rec, "https://rp.example/cb", ResponseModeFormPost, payload)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="https://rp.example/cb"`)
	assert.Contains(t, body, `name="code" value="abc123"`)
	assert.Contains(t, body, `name="state" value="xyz"`)
}

func TestSetError_OmitsEmptyDescription(t *testing.T) {
	p := SetError("xyz", ErrInvalidScope, "")
	assert.Equal(t, ErrInvalidScope, p.Values.Get("error"))
	assert.Empty(t, p.Values.Get("error_description"))
	assert.Equal(t, "xyz", p.Values.Get("state"))
}

func TestNewPayload_KeepsEmptyStateField(t *testing.T) {
	p := NewPayload("")
	_, present := p.Values["state"]
	assert.True(t, present, "state key must be present even when empty")
}

func TestWriteBadRequestPage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteBadRequestPage(rec, "invalid_request", "redirect_uri could not be verified")
	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), "redirect_uri could not be verified")
}
