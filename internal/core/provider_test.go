package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/hosting/internal/model"
)

func TestProviderService_LookupReturnsNilNilWhenMissing(t *testing.T) {
	db := new(mockDB)
	row := &mockRow{scanFunc: func(dest ...any) error { return assertAnError }}
	db.On("QueryRow", context.Background(), mock.Anything, mock.Anything).Return(row).Once()

	svc := NewProviderService(db)
	p, err := svc.Lookup(context.Background(), "missing-client")
	require.NoError(t, err)
	assert.Nil(t, p, "a missing row must be reported as (nil, nil), not an error")
}

func TestProviderService_LookupScansRow(t *testing.T) {
	db := new(mockDB)
	now := time.Now()
	row := &mockRow{scanFunc: func(dest ...any) error {
		*dest[0].(*string) = "client-1"
		*dest[1].(*string) = "Example RP"
		*dest[2].(*string) = "bcrypt-hash"
		*dest[3].(*[]model.RedirectURIEntry) = []model.RedirectURIEntry{{Mode: "strict", Pattern: "https://rp.example/cb"}}
		*dest[4].(*[]model.ScopeMapping) = []model.ScopeMapping{{Scope: "openid", Description: "Sign you in"}}
		*dest[5].(*string) = "default-authorization-flow"
		*dest[6].(*int) = 600
		*dest[7].(*int) = 3600
		*dest[8].(*string) = "key-1"
		*dest[9].(*time.Time) = now
		return nil
	}}
	db.On("QueryRow", context.Background(), mock.Anything, mock.Anything).Return(row).Once()

	svc := NewProviderService(db)
	p, err := svc.Lookup(context.Background(), "client-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "client-1", p.ClientID)
	assert.Equal(t, 10*time.Minute, p.AccessCodeValidity)
	assert.Equal(t, time.Hour, p.AccessTokenValidity)
}

func TestProviderService_ProvisionRedirectURIGuardsOnEmptyAllowList(t *testing.T) {
	db := new(mockDB)
	db.On("Exec", context.Background(),
		mock.MatchedBy(func(sql string) bool { return strings.Contains(sql, "redirect_uris = '[]'::jsonb") }),
		mock.Anything,
	).Return(pgconn.CommandTag{}, nil).Once()

	svc := NewProviderService(db)
	p := &model.Provider{ClientID: "client-1"}
	err := svc.ProvisionRedirectURI(context.Background(), p, "https://rp.example/cb")
	require.NoError(t, err)
	require.Len(t, p.RedirectURIs, 1)
	assert.Equal(t, "strict", p.RedirectURIs[0].Mode)
	assert.Equal(t, "https://rp.example/cb", p.RedirectURIs[0].Pattern)
	db.AssertExpectations(t)
}

func TestProviderService_RegisterHashesSecretAndPersists(t *testing.T) {
	db := new(mockDB)
	db.On("Exec", context.Background(), mock.Anything, mock.Anything).
		Return(pgconn.CommandTag{}, nil).Once()
	now := time.Now()
	row := &mockRow{scanFunc: func(dest ...any) error {
		*dest[0].(*time.Time) = now
		return nil
	}}
	db.On("QueryRow", context.Background(), mock.Anything, mock.Anything).Return(row).Once()

	svc := NewProviderService(db)
	p, secret, err := svc.Register(context.Background(), "Example RP",
		[]model.RedirectURIEntry{{Mode: "strict", Pattern: "https://rp.example/cb"}},
		[]model.ScopeMapping{{Scope: "openid", Description: "Sign you in"}},
		"key-1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ClientID)
	assert.Len(t, secret, 64, "256 random bits hex-encoded is 64 chars")
	assert.NotEqual(t, secret, p.SecretHash, "the stored hash must not be the plaintext secret")
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, "default-authorization-flow", p.AuthorizationFlow, "empty authorization_flow defaults rather than persisting blank")
	db.AssertExpectations(t)
}

func TestProviderService_ListScansAllRows(t *testing.T) {
	db := new(mockDB)
	rows := newMockRows(
		func(dest ...any) error {
			*dest[0].(*string) = "client-1"
			*dest[1].(*string) = "Example RP"
			*dest[2].(*[]model.RedirectURIEntry) = nil
			*dest[3].(*[]model.ScopeMapping) = nil
			*dest[4].(*string) = "default-authorization-flow"
			*dest[5].(*int) = 600
			*dest[6].(*int) = 3600
			*dest[7].(*string) = "key-1"
			*dest[8].(*time.Time) = time.Now()
			return nil
		},
	)
	db.On("Query", context.Background(), mock.Anything, mock.Anything).Return(rows, nil).Once()

	svc := NewProviderService(db)
	out, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "client-1", out[0].ClientID)
}
