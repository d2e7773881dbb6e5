// Package signing implements keyed request signing for enterprise-style
// credentials: an HMAC-SHA1 digest over the request path and query, with the
// shared secret exchanged in URL-safe base64.
package signing

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
)

// Signer computes request signatures. The key is read-only after New.
type Signer struct {
	key []byte
}

// New decodes a URL-safe base64 shared secret. Both padded and unpadded
// forms are accepted, since issued secrets show up either way.
func New(secret string) (*Signer, error) {
	key, err := base64.URLEncoding.DecodeString(secret)
	if err != nil {
		key, err = base64.RawURLEncoding.DecodeString(secret)
	}
	if err != nil {
		return nil, fmt.Errorf("signing: secret is not url-safe base64: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("signing: empty secret")
	}
	return &Signer{key: key}, nil
}

// Sign returns the URL-safe base64 signature for a "/path?query" string.
func (s *Signer) Sign(pathAndQuery string) string {
	mac := hmac.New(sha1.New, s.key)
	mac.Write([]byte(pathAndQuery))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}
