package common

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeKeyPairJWT = "KEYPAIR_JWT"

	defaultJWTLifetime = 59 * time.Minute
	// refreshMargin renews the token before the warehouse would reject it
	refreshMargin = time.Minute
)

// KeyPairTokenSource signs short-lived RS256 JWTs for key-pair authentication
// and reuses a token until shortly before it expires.
type KeyPairTokenSource struct {
	qualifiedUser string
	fingerprint   string
	key           *rsa.PrivateKey
	lifetime      time.Duration
	now           func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewKeyPairTokenSourceFromFile(account, user, path string, lifetime time.Duration) (*KeyPairTokenSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	key, err := ParsePrivateKey(data)
	if err != nil {
		return nil, err
	}

	return NewKeyPairTokenSource(account, user, key, lifetime)
}

func NewKeyPairTokenSource(account, user string, key *rsa.PrivateKey, lifetime time.Duration) (*KeyPairTokenSource, error) {
	if account == "" || user == "" {
		return nil, errors.New("account and user are required for key-pair auth")
	}
	if lifetime <= 0 || lifetime > time.Hour {
		lifetime = defaultJWTLifetime
	}

	fingerprint, err := PublicKeyFingerprint(&key.PublicKey)
	if err != nil {
		return nil, err
	}

	return &KeyPairTokenSource{
		qualifiedUser: normalizeAccount(account) + "." + strings.ToUpper(user),
		fingerprint:   fingerprint,
		key:           key,
		lifetime:      lifetime,
		now:           time.Now,
	}, nil
}

func (s *KeyPairTokenSource) Token() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Add(refreshMargin).Before(s.expires) {
		return s.token, TokenTypeKeyPairJWT, nil
	}

	expires := now.Add(s.lifetime)
	claims := jwt.RegisteredClaims{
		Issuer:    s.qualifiedUser + "." + s.fingerprint,
		Subject:   s.qualifiedUser,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return "", "", fmt.Errorf("sign jwt: %w", err)
	}

	s.token = signed
	s.expires = expires
	return signed, TokenTypeKeyPairJWT, nil
}

// ParsePrivateKey accepts PKCS#8 and PKCS#1 PEM encoded RSA keys
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("private key is not PEM encoded")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return key, nil
}

// PublicKeyFingerprint returns SHA256:<base64 digest of the DER public key>
func PublicKeyFingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return "SHA256:" + base64.StdEncoding.EncodeToString(sum[:]), nil
}

// normalizeAccount drops the region suffix of an account locator and upper-cases it
func normalizeAccount(account string) string {
	if idx := strings.Index(account, "."); idx > 0 {
		account = account[:idx]
	}
	return strings.ToUpper(account)
}
