// Package testutil provides an in-process stand-in for the platform API so
// integration tests can exercise the full SDK without a real backend.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningSecret signs the tokens the fake login endpoint issues.
const SigningSecret = "test-secret"

// PlatformArticle is the wire shape the fake server stores and serves.
type PlatformArticle struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	AuthorID  string `json:"author_id"`
	Status    string `json:"status"`
	Views     int64  `json:"views"`
	Likes     int64  `json:"likes"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PlatformServer fakes the platform API over httptest. It records per-path
// hit counts so tests can assert how often the SDK actually went upstream.
type PlatformServer struct {
	srv *httptest.Server

	mu       sync.Mutex
	calls    map[string]int
	articles []PlatformArticle
	nextID   int
	pageSize int
}

// NewPlatformServer starts a fake platform seeded with a small article set.
// The server is closed automatically when the test finishes.
func NewPlatformServer(t *testing.T) *PlatformServer {
	t.Helper()

	p := &PlatformServer{
		calls:    make(map[string]int),
		pageSize: 12,
		nextID:   100,
		articles: []PlatformArticle{
			{ID: "a-1", Title: "Channels in practice", AuthorID: "u-1", Status: "published",
				Views: 120, Likes: 4, CreatedAt: "2026-01-01T10:00:00Z", UpdatedAt: "2026-01-05T10:00:00Z"},
			{ID: "a-2", Title: "Profiling walkthrough", AuthorID: "u-1", Status: "published",
				Views: 80, Likes: 2, CreatedAt: "2026-01-02T10:00:00Z", UpdatedAt: "2026-01-02T10:00:00Z"},
			{ID: "a-3", Title: "Release notes", AuthorID: "u-2", Status: "draft",
				Views: 10, Likes: 0, CreatedAt: "2026-01-03T10:00:00Z", UpdatedAt: "2026-01-03T10:00:00Z"},
		},
	}
	p.srv = httptest.NewServer(http.HandlerFunc(p.handle))
	t.Cleanup(p.srv.Close)
	return p
}

// URL is the server base URL.
func (p *PlatformServer) URL() string {
	return p.srv.URL
}

// Calls returns how many requests hit the given path.
func (p *PlatformServer) Calls(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[path]
}

// SeedArticles replaces the stored article set.
func (p *PlatformServer) SeedArticles(list []PlatformArticle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.articles = list
}

func (p *PlatformServer) handle(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.calls[r.URL.Path]++
	p.mu.Unlock()

	switch {
	case r.URL.Path == "/api/auth/login" && r.Method == http.MethodPost:
		p.handleLogin(w, r)
	case r.URL.Path == "/api/auth/logout":
		writeJSON(w, map[string]any{"success": true})
	case r.URL.Path == "/api/articles" && r.Method == http.MethodGet:
		p.handleList(w, r)
	case r.URL.Path == "/api/articles" && r.Method == http.MethodPost:
		p.handleCreate(w, r)
	case r.URL.Path == "/api/articles/search":
		p.handleSearch(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/articles/"):
		p.handleArticle(w, r)
	case r.URL.Path == "/api/tags":
		writeJSON(w, map[string]any{"data": []map[string]any{
			{"id": "t-1", "name": "go", "count": 12},
			{"id": "t-2", "name": "testing", "count": 7},
		}})
	default:
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"success": false, "error": "not found"})
	}
}

func (p *PlatformServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeJSON(w, map[string]any{"success": false, "error": "invalid credentials"})
		return
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "u-1",
		"username": strings.SplitN(req.Email, "@", 2)[0],
		"roles":    []string{"author"},
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(SigningSecret))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"data": map[string]any{"token": token}})
}

func (p *PlatformServer) handleList(w http.ResponseWriter, r *http.Request) {
	authorID := r.URL.Query().Get("author_id")
	status := r.URL.Query().Get("status")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if size <= 0 {
		size = p.pageSize
	}

	p.mu.Lock()
	matched := make([]PlatformArticle, 0, len(p.articles))
	for _, a := range p.articles {
		if authorID != "" && a.AuthorID != authorID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		matched = append(matched, a)
	}
	p.mu.Unlock()

	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	writeJSON(w, map[string]any{"data": map[string]any{
		"items":      matched[start:end],
		"pagination": map[string]any{"page": page, "total": len(matched)},
	}})
}

func (p *PlatformServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))

	p.mu.Lock()
	matched := make([]PlatformArticle, 0)
	for _, a := range p.articles {
		if strings.Contains(strings.ToLower(a.Title), q) {
			matched = append(matched, a)
		}
	}
	p.mu.Unlock()

	writeJSON(w, map[string]any{"results": matched})
}

func (p *PlatformServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string `json:"title"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSON(w, map[string]any{"success": false, "error": "title required"})
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	p.mu.Lock()
	p.nextID++
	article := PlatformArticle{
		ID:        "a-" + strconv.Itoa(p.nextID),
		Title:     req.Title,
		AuthorID:  "u-1",
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if article.Status == "" {
		article.Status = "draft"
	}
	p.articles = append(p.articles, article)
	p.mu.Unlock()

	writeJSON(w, map[string]any{"data": article})
}

func (p *PlatformServer) handleArticle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/articles/")
	if i := strings.IndexByte(id, '/'); i >= 0 {
		// Reaction endpoints: /api/articles/{id}/like and friends.
		id = id[:i]
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.articles {
		if a.ID == id {
			writeJSON(w, map[string]any{"data": a})
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
	writeJSON(w, map[string]any{"success": false, "error": "not found"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
