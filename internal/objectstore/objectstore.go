// Package objectstore implements the object-storage contract the pipeline
// uses to retrieve raw document bytes: get_signed_url(path, ttl_seconds) →
// url, followed by an HTTP GET the orchestrator treats as failed on any
// non-200 response (spec.md §6).
//
// No object-storage SDK appears anywhere in the reference corpus (no S3,
// GCS, or MinIO client), so signing is built the way the corpus signs
// anything else short-lived and tamper-evident: a JWT (golang-jwt, with an
// ephemeral key for development when none is configured) carrying the path
// and expiry instead of a principal.
package objectstore

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const maxErrorBodyBytes = 4 << 10 // cap on error body we'll log/wrap on a failed GET

// Claims is the JWT payload carried by a signed object-storage URL.
type Claims struct {
	jwt.RegisteredClaims
	Path string `json:"path"`
}

// Store issues signed URLs for paths under baseURL and fetches them.
type Store struct {
	baseURL    string
	signingKey []byte
	httpClient *http.Client
}

// New creates a Store. If signingKey is empty, an ephemeral key is
// generated — acceptable for local development, not for a multi-instance
// deployment (a signed URL from one instance won't verify against
// another's key).
func New(baseURL, signingKey string) (*Store, error) {
	key := []byte(signingKey)
	if len(key) == 0 {
		slog.Warn("objectstore: no signing key configured, generating ephemeral key (not for production)")
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("objectstore: generate ephemeral key: %w", err)
		}
	}
	return &Store{
		baseURL:    strings.TrimRight(baseURL, "/"),
		signingKey: key,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// GetSignedURL returns a time-limited URL for path, valid for ttlSeconds
// (spec.md §6 default is 300). The orchestrator is expected to issue an
// HTTP GET against it promptly; the token is rejected past expiry.
func (s *Store) GetSignedURL(path string, ttlSeconds int) (string, error) {
	if ttlSeconds <= 0 {
		ttlSeconds = 300
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlSeconds) * time.Second)),
		},
		Path: path,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("objectstore: sign url: %w", err)
	}
	return fmt.Sprintf("%s/%s?token=%s", s.baseURL, strings.TrimLeft(path, "/"), token), nil
}

// VerifyToken checks a signed URL's token and returns the path it grants
// access to. Used by the object-storage gateway itself, not by the
// pipeline — included here because the gateway and the pipeline share this
// package in a single-binary deployment.
func (s *Store) VerifyToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("objectstore: verify token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("objectstore: invalid token")
	}
	return claims.Path, nil
}

// Fetch issues an HTTP GET against a signed URL and returns the body bytes.
// A non-200 response is a failure, per spec.md §6.
func (s *Store) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("objectstore: build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("objectstore: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("objectstore: fetch %s: status %d: %s", url, resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("objectstore: read body: %w", err)
	}
	return data, nil
}
