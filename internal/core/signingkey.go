package core

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/edvin/hosting/internal/model"
	"github.com/edvin/hosting/internal/platform"
)

// SigningKeyService ensures a single active RSA signing key exists for
// ID-token signing, caching it in memory once loaded.
type SigningKeyService struct {
	db DB

	group singleflight.Group

	mu     sync.RWMutex
	active *model.SigningKey
}

func NewSigningKeyService(db DB) *SigningKeyService {
	return &SigningKeyService{db: db}
}

// Active returns the current active signing key, loading or generating
// one if needed. Concurrent callers racing to generate the first key
// are deduplicated through singleflight rather than the database's
// unique constraint, since key generation is comparatively expensive.
func (s *SigningKeyService) Active(ctx context.Context) (*model.SigningKey, error) {
	s.mu.RLock()
	if s.active != nil {
		k := s.active
		s.mu.RUnlock()
		return k, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.group.Do("active-signing-key", func() (any, error) {
		return s.loadOrGenerate(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.SigningKey), nil
}

func (s *SigningKeyService) loadOrGenerate(ctx context.Context) (*model.SigningKey, error) {
	var k model.SigningKey
	err := s.db.QueryRow(ctx,
		`SELECT id, algorithm, public_key_pem, private_key_pem, active, created_at
		   FROM signing_keys WHERE active = true ORDER BY created_at DESC LIMIT 1`,
	).Scan(&k.ID, &k.Algorithm, &k.PublicKeyPEM, &k.PrivateKeyPEM, &k.Active, &k.CreatedAt)
	if err == nil {
		s.mu.Lock()
		s.active = &k
		s.mu.Unlock()
		return &k, nil
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})

	generated := &model.SigningKey{
		ID:           platform.NewID(),
		Algorithm:    "RS256",
		PublicKeyPEM: string(pubPEM),
		PrivateKeyPEM: string(privPEM),
		Active:       true,
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO signing_keys (id, algorithm, public_key_pem, private_key_pem, active, created_at)
		 VALUES ($1,$2,$3,$4,true,now())
		 ON CONFLICT DO NOTHING`,
		generated.ID, generated.Algorithm, generated.PublicKeyPEM, generated.PrivateKeyPEM,
	)
	if err != nil {
		return nil, fmt.Errorf("store signing key: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT id, algorithm, public_key_pem, private_key_pem, active, created_at
		   FROM signing_keys WHERE active = true ORDER BY created_at DESC LIMIT 1`,
	).Scan(&k.ID, &k.Algorithm, &k.PublicKeyPEM, &k.PrivateKeyPEM, &k.Active, &k.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("reload signing key: %w", err)
	}

	s.mu.Lock()
	s.active = &k
	s.mu.Unlock()
	return &k, nil
}
