package oauth2

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"time"

	josejwt "github.com/go-jose/go-jose/v3"

	"github.com/edvin/hosting/internal/model"
)

// SignIDToken signs the given claim set with key and returns a compact
// JWS using go-jose's RSA signer rather than hand-rolled
// PKCS1v15-over-base64url construction.
func SignIDToken(key *model.SigningKey, claims model.IDTokenClaims) (string, error) {
	block, _ := pem.Decode([]byte(key.PrivateKeyPEM))
	if block == nil {
		return "", fmt.Errorf("decode signing key %s: not PEM", key.ID)
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("parse signing key %s: %w", key.ID, err)
	}

	signer, err := josejwt.NewSigner(josejwt.SigningKey{
		Algorithm: josejwt.SignatureAlgorithm(key.Algorithm),
		Key:       priv,
	}, (&josejwt.SignerOptions{}).WithHeader("kid", key.ID).WithType("JWT"))
	if err != nil {
		return "", fmt.Errorf("build signer: %w", err)
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal id_token claims: %w", err)
	}

	jws, err := signer.Sign(payload)
	if err != nil {
		return "", fmt.Errorf("sign id_token: %w", err)
	}

	compact, err := jws.CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("serialize id_token: %w", err)
	}
	return compact, nil
}

// PublicJWK renders key's public half as a JWK map entry for the JWKS
// document, built through go-jose's JSONWebKey rather than manual
// big.Int JWK construction.
func PublicJWK(key *model.SigningKey) (josejwt.JSONWebKey, error) {
	block, _ := pem.Decode([]byte(key.PublicKeyPEM))
	if block == nil {
		return josejwt.JSONWebKey{}, fmt.Errorf("decode public key %s: not PEM", key.ID)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return josejwt.JSONWebKey{}, fmt.Errorf("parse public key %s: %w", key.ID, err)
	}
	if _, ok := pub.(*rsa.PublicKey); !ok {
		return josejwt.JSONWebKey{}, fmt.Errorf("signing key %s is not RSA", key.ID)
	}
	return josejwt.JSONWebKey{
		Key:       pub,
		KeyID:     key.ID,
		Algorithm: key.Algorithm,
		Use:       "sig",
	}, nil
}

// NewIDTokenClaims fills issuer, subject, audience, timestamps and the
// nonce (empty if none); c_hash and at_hash are left for the caller.
func NewIDTokenClaims(issuer, subject, audience string, authTime time.Time, ttl time.Duration, nonce string) model.IDTokenClaims {
	now := time.Now()
	return model.IDTokenClaims{
		Issuer:   issuer,
		Subject:  subject,
		Audience: audience,
		IssuedAt: now.Unix(),
		Expiry:   now.Add(ttl).Unix(),
		AuthTime: authTime.Unix(),
		Nonce:    nonce,
	}
}
