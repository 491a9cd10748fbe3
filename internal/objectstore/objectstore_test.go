package objectstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenFromURL(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestGetSignedURL_VerifyRoundTrip(t *testing.T) {
	s, err := New("https://storage.internal/veritas-documents", "test-signing-key")
	require.NoError(t, err)

	signedURL, err := s.GetSignedURL("docs/lease.pdf", 300)
	require.NoError(t, err)
	assert.Contains(t, signedURL, "storage.internal/veritas-documents/docs/lease.pdf?token=")

	path, err := s.VerifyToken(tokenFromURL(t, signedURL))
	require.NoError(t, err)
	assert.Equal(t, "docs/lease.pdf", path)
}

func TestVerifyToken_RejectsWrongKey(t *testing.T) {
	issuer, err := New("https://storage.internal", "signing-key-a")
	require.NoError(t, err)
	signedURL, err := issuer.GetSignedURL("docs/lease.pdf", 300)
	require.NoError(t, err)

	verifier, err := New("https://storage.internal", "signing-key-b")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(tokenFromURL(t, signedURL))
	assert.Error(t, err)
}

func TestGetSignedURL_DefaultsTTLWhenNonPositive(t *testing.T) {
	s, err := New("https://storage.internal", "test-signing-key")
	require.NoError(t, err)

	signedURL, err := s.GetSignedURL("docs/a.txt", 0)
	require.NoError(t, err)

	path, err := s.VerifyToken(tokenFromURL(t, signedURL))
	require.NoError(t, err)
	assert.Equal(t, "docs/a.txt", path)
}

func TestFetch_NonOKStatusIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found"))
	}))
	defer srv.Close()

	s, err := New(srv.URL, "test-signing-key")
	require.NoError(t, err)

	_, err = s.Fetch(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestFetch_OKReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("document bytes"))
	}))
	defer srv.Close()

	s, err := New(srv.URL, "test-signing-key")
	require.NoError(t, err)

	body, err := s.Fetch(context.Background(), srv.URL+"/docs/lease.pdf")
	require.NoError(t, err)
	assert.Equal(t, "document bytes", string(body))
}
