package imagegen

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"
)

type apiTokenClaims struct {
	Issuer    string `json:"iss"`
	Exp       int64  `json:"exp"`
	NotBefore int64  `json:"nbf"`
	IssuedAt  int64  `json:"iat"`
}

const (
	tokenTTL          = 30 * time.Minute
	tokenExpiryBuffer = 60 * time.Second
)

// tokenSigner mints short-lived HS256 tokens for the image provider and
// reuses each token until it is within the expiry buffer.
type tokenSigner struct {
	accessKey string
	secretKey string
	now       func() time.Time

	mu     sync.Mutex
	cached string
	expiry time.Time
}

func newTokenSigner(accessKey, secretKey string) *tokenSigner {
	return &tokenSigner{accessKey: accessKey, secretKey: secretKey, now: time.Now}
}

// Token returns a valid bearer token, re-signing when the cached one is
// expired or about to expire.
func (s *tokenSigner) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if s.cached != "" && now.Before(s.expiry.Add(-tokenExpiryBuffer)) {
		return s.cached
	}
	expiry := now.Add(tokenTTL)
	s.cached = s.sign(apiTokenClaims{
		Issuer:    s.accessKey,
		Exp:       expiry.Unix(),
		NotBefore: now.Add(-5 * time.Second).Unix(),
		IssuedAt:  now.Unix(),
	})
	s.expiry = expiry
	return s.cached
}

func (s *tokenSigner) sign(claims apiTokenClaims) string {
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	headerJSON, _ := json.Marshal(header)
	payloadJSON, _ := json.Marshal(claims)
	data := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	mac := hmac.New(sha256.New, []byte(s.secretKey))
	mac.Write([]byte(data))
	return data + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
