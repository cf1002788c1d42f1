package oauth2

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"hash"
)

// hashForAlg maps an ID-token signing algorithm to the hash constructor
// used for its c_hash/at_hash claims, grounded on dex's hashForSigAlg
// table (other_examples/857fade5_dexidp-dex__server-oauth2.go.go).
var hashForAlg = map[string]func() hash.Hash{
	"RS256": sha256.New,
	"RS384": sha512.New384,
	"RS512": sha512.New,
	"ES256": sha256.New,
	"ES384": sha512.New384,
	"ES512": sha512.New,
}

// LeftHash computes the left-half-of-hash claim value used for both
// c_hash and at_hash: hash the token value with the hash matching the
// ID token's signing algorithm, take the left half of the digest, and
// base64url-encode without padding.
func LeftHash(alg, token string) (string, error) {
	newHash, ok := hashForAlg[alg]
	if !ok {
		return "", fmt.Errorf("unsupported signing algorithm for hash claim: %s", alg)
	}
	h := newHash()
	h.Write([]byte(token))
	sum := h.Sum(nil)
	return base64.RawURLEncoding.EncodeToString(sum[:len(sum)/2]), nil
}
