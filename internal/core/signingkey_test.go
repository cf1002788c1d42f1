package core

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSigningKeyService_GeneratesWhenNoneActive(t *testing.T) {
	db := new(mockDB)
	notFoundRow := &mockRow{scanFunc: func(dest ...any) error { return assertAnError }}
	db.On("QueryRow", context.Background(), mock.Anything, mock.Anything).Return(notFoundRow).Once()
	db.On("Exec", context.Background(), mock.Anything, mock.Anything).Return(pgconn.CommandTag{}, nil).Once()

	loadedRow := &mockRow{scanFunc: func(dest ...any) error {
		*dest[0].(*string) = "key-1"
		*dest[1].(*string) = "RS256"
		*dest[2].(*string) = "pub-pem"
		*dest[3].(*string) = "priv-pem"
		*dest[4].(*bool) = true
		return nil
	}}
	db.On("QueryRow", context.Background(), mock.Anything, mock.Anything).Return(loadedRow).Once()

	svc := NewSigningKeyService(db)
	key, err := svc.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key-1", key.ID)
	assert.True(t, key.Active)
}

func TestSigningKeyService_CachesActiveKey(t *testing.T) {
	db := new(mockDB)
	row := &mockRow{scanFunc: func(dest ...any) error {
		*dest[0].(*string) = "key-1"
		*dest[1].(*string) = "RS256"
		*dest[2].(*string) = "pub-pem"
		*dest[3].(*string) = "priv-pem"
		*dest[4].(*bool) = true
		return nil
	}}
	db.On("QueryRow", context.Background(), mock.Anything, mock.Anything).Return(row).Once()

	svc := NewSigningKeyService(db)
	first, err := svc.Active(context.Background())
	require.NoError(t, err)
	second, err := svc.Active(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second, "second call must not hit the database again")
	db.AssertExpectations(t)
}

var assertAnError = assertError{}

type assertError struct{}

func (assertError) Error() string { return "not found" }
