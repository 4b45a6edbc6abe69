package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribehub/go-scribe/fetchcache"
	"github.com/scribehub/go-scribe/logger"
	"github.com/scribehub/go-scribe/transport"
)

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestParseToken(t *testing.T) {
	raw := signTestToken(t, jwt.MapClaims{
		"sub":      "u-1",
		"username": "ada",
		"roles":    []string{"author", "admin"},
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	claims, err := ParseToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "ada", claims.Username)
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("moderator"))
	assert.False(t, claims.IsExpired())
}

func TestParseToken_Malformed(t *testing.T) {
	_, err := ParseToken("not-a-jwt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestManager_LoginStoresTokenForTransport(t *testing.T) {
	var gotAuth atomic.Value
	gotAuth.Store("")

	token := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"token": token}})
		case "/api/me":
			gotAuth.Store(r.Header.Get("Authorization"))
			w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	manager := NewManager(nil, nil, logger.Nop())
	client := transport.NewClient(
		transport.WithBaseURL(srv.URL),
		transport.WithTokenProvider(manager.TokenProvider()),
	)
	manager.SetClient(client)

	token = signTestToken(t, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(time.Hour).Unix()})

	claims, err := manager.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.True(t, manager.IsAuthenticated())

	_, err = client.Get(context.Background(), "/api/me")
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+token, gotAuth.Load())
}

func TestManager_LoginValidation(t *testing.T) {
	manager := NewManager(transport.NewClient(), nil, logger.Nop())

	_, err := manager.Login(context.Background(), LoginRequest{Email: "not-an-email", Password: "pw"})
	require.Error(t, err)

	_, err = manager.Login(context.Background(), LoginRequest{Email: "ada@example.com"})
	require.Error(t, err)
}

func TestManager_LoginRejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"invalid credentials"}`))
	}))
	defer srv.Close()

	manager := NewManager(transport.NewClient(transport.WithBaseURL(srv.URL)), nil, logger.Nop())

	_, err := manager.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "bad"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.False(t, manager.IsAuthenticated())
}

func TestManager_LogoutClearsSessionAndCache(t *testing.T) {
	token := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			json.NewEncoder(w).Encode(map[string]any{"token": token})
		default:
			w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	cache := fetchcache.NewOrchestrator(fetchcache.DefaultConfig(), fetchcache.NewMemoryStore("test", 100), logger.Nop())
	defer cache.Close()

	client := transport.NewClient(transport.WithBaseURL(srv.URL))
	manager := NewManager(client, cache, logger.Nop())

	token = signTestToken(t, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(time.Hour).Unix()})
	_, err := manager.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	// Prime the cache, then make sure logout wipes it.
	ctx := context.Background()
	var fetches int64
	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt64(&fetches, 1)
		return []byte(`[]`), nil
	}
	key := fetchcache.Key{Subject: "u-1", Page: 1}
	_, err = cache.FetchCollection(ctx, key, fetchcache.FetchOptions{}, fetch)
	require.NoError(t, err)

	require.NoError(t, manager.Logout(ctx))
	assert.False(t, manager.IsAuthenticated())
	assert.Nil(t, manager.Claims())
	_, err = manager.UserID()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = cache.FetchCollection(ctx, key, fetchcache.FetchOptions{}, fetch)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&fetches), "logout cleared the cached collection")
}

func TestExtractToken_EnvelopeVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"top-level token", `{"token":"t1"}`, "t1"},
		{"top-level access_token", `{"access_token":"t2"}`, "t2"},
		{"data.token", `{"data":{"token":"t3"}}`, "t3"},
		{"data.access_token", `{"data":{"access_token":"t4"}}`, "t4"},
		{"absent", `{"success":true}`, ""},
		{"garbage", `nope`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractToken([]byte(tt.body)))
		})
	}
}
