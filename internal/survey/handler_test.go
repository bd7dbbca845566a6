package survey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulso-social/backend/internal/models"
)

// memoryStore implements Store with the same semantics the SQL repository
// gets from the database: unique (post_id, user_id) pairs and a stable
// created_at-then-id walk order.
type memoryStore struct {
	mu        sync.Mutex
	posts     []*models.Post
	responses map[string]*models.SurveyResponse
}

func newMemoryStore() *memoryStore {
	return &memoryStore{responses: make(map[string]*models.SurveyResponse)}
}

func (m *memoryStore) addPost(id int64, content *string, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, &models.Post{ID: id, Content: content, CreatedAt: createdAt})
}

func pairKey(postID int64, userID string) string {
	return fmt.Sprintf("%d|%s", postID, userID)
}

func (m *memoryStore) NextForUser(ctx context.Context, userID string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := make([]*models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if p.Content == nil {
			continue
		}
		if _, answered := m.responses[pairKey(p.ID, userID)]; answered {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return nil, ErrExhausted
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].ID < candidates[j].ID
	})
	result := *candidates[0]
	return &result, nil
}

func (m *memoryStore) Record(ctx context.Context, resp *models.SurveyResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(resp.PostID, resp.UserID)
	if _, exists := m.responses[key]; exists {
		return nil
	}
	stored := *resp
	stored.CreatedAt = time.Now()
	m.responses[key] = &stored
	return nil
}

func (m *memoryStore) ListResponses(ctx context.Context) ([]*models.AdminResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	content := make(map[int64]*string, len(m.posts))
	for _, p := range m.posts {
		content[p.ID] = p.Content
	}
	result := make([]*models.AdminResponse, 0, len(m.responses))
	for _, r := range m.responses {
		result = append(result, &models.AdminResponse{
			Post:            content[r.PostID],
			PublishedByUser: r.PublishedByUser,
			IPAddress:       r.IPAddress,
			UserAgent:       r.UserAgent,
			UserID:          r.UserID,
			CreatedAt:       r.CreatedAt,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

type failingStore struct{}

func (failingStore) NextForUser(ctx context.Context, userID string) (*models.Post, error) {
	return nil, fmt.Errorf("connection refused")
}

func (failingStore) Record(ctx context.Context, resp *models.SurveyResponse) error {
	return fmt.Errorf("connection refused")
}

func (failingStore) ListResponses(ctx context.Context) ([]*models.AdminResponse, error) {
	return nil, fmt.Errorf("connection refused")
}

func setupRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, zap.NewNop())
	r := gin.New()
	r.GET("/posts/next/:userId", h.Next)
	r.POST("/survey", h.Submit)
	r.GET("/admin/responses", h.AdminResponses)
	return r
}

func strPtr(s string) *string { return &s }

func doNext(t *testing.T, r *gin.Engine, userID string) (int, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/posts/next/"+userID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func doSubmit(t *testing.T, r *gin.Engine, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/survey", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNextIsDeterministicBeforeAnyResponse(t *testing.T) {
	store := newMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.addPost(1, strPtr("first"), base)
	store.addPost(2, strPtr("second"), base.Add(time.Hour))
	r := setupRouter(store)

	for i := 0; i < 5; i++ {
		code, body := doNext(t, r, "user-x")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "1", string(body["id"]))
	}
}

func TestNextTieBreakOnEqualTimestamps(t *testing.T) {
	store := newMemoryStore()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.addPost(7, strPtr("seven"), at)
	store.addPost(3, strPtr("three"), at)
	r := setupRouter(store)

	// Equal created_at resolves by id ascending, stable across calls.
	for i := 0; i < 3; i++ {
		code, body := doNext(t, r, "user-x")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "3", string(body["id"]))
	}
}

func TestNextSkipsPostsWithoutContent(t *testing.T) {
	store := newMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.addPost(1, nil, base)
	store.addPost(2, strPtr("has text"), base.Add(time.Minute))
	r := setupRouter(store)

	code, body := doNext(t, r, "user-x")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2", string(body["id"]))
}

func TestSurveyWalkToExhaustion(t *testing.T) {
	store := newMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.addPost(10, strPtr("post A"), base)
	store.addPost(11, strPtr("post B"), base.Add(time.Hour))
	r := setupRouter(store)

	code, body := doNext(t, r, "x")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "10", string(body["id"]))

	w := doSubmit(t, r, `{"post_id":10,"user_id":"x","published_by_user":true}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	code, body = doNext(t, r, "x")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "11", string(body["id"]))

	w = doSubmit(t, r, `{"post_id":11,"user_id":"x","published_by_user":false}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	code, body = doNext(t, r, "x")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "true", string(body["done"]))
	assert.NotContains(t, body, "id")

	// A different user still starts from the beginning.
	code, body = doNext(t, r, "y")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "10", string(body["id"]))
}

func TestAnsweredPostNeverReturnsForUser(t *testing.T) {
	store := newMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.addPost(1, strPtr("a"), base)
	store.addPost(2, strPtr("b"), base.Add(time.Minute))
	r := setupRouter(store)

	w := doSubmit(t, r, `{"post_id":1,"user_id":"x","published_by_user":true}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for i := 0; i < 3; i++ {
		code, body := doNext(t, r, "x")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "2", string(body["id"]))
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	store := newMemoryStore()
	store.addPost(5, strPtr("a"), time.Now())
	r := setupRouter(store)

	w := doSubmit(t, r, `{"post_id":5,"user_id":"x","published_by_user":true}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	// The retry contradicts the first answer; it still succeeds and changes nothing.
	w = doSubmit(t, r, `{"post_id":5,"user_id":"x","published_by_user":false}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.responses, 1)
	assert.True(t, store.responses[pairKey(5, "x")].PublishedByUser)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing published_by_user", `{"post_id":1,"user_id":"x"}`, http.StatusBadRequest},
		{"missing post_id", `{"user_id":"x","published_by_user":true}`, http.StatusBadRequest},
		{"missing user_id", `{"post_id":1,"published_by_user":true}`, http.StatusBadRequest},
		{"malformed json", `{"post_id":`, http.StatusBadRequest},
		{"published_by_user false is valid", `{"post_id":1,"user_id":"x","published_by_user":false}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			store.addPost(1, strPtr("a"), time.Now())
			r := setupRouter(store)

			w := doSubmit(t, r, tt.body, nil)
			assert.Equal(t, tt.wantStatus, w.Code)

			store.mu.Lock()
			defer store.mu.Unlock()
			if tt.wantStatus == http.StatusOK {
				assert.Len(t, store.responses, 1)
			} else {
				assert.Empty(t, store.responses, "validation failure must not write a row")
			}
		})
	}
}

func TestSubmitRecordsOriginMetadata(t *testing.T) {
	store := newMemoryStore()
	store.addPost(1, strPtr("a"), time.Now())
	r := setupRouter(store)

	w := doSubmit(t, r, `{"post_id":1,"user_id":"x","published_by_user":true}`, map[string]string{
		"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
		"User-Agent":      "pulso-widget/1.2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	store.mu.Lock()
	stored := store.responses[pairKey(1, "x")]
	store.mu.Unlock()
	require.NotNil(t, stored)
	assert.Equal(t, "203.0.113.7", stored.IPAddress)
	assert.Equal(t, "pulso-widget/1.2", stored.UserAgent)
}

func TestSubmitFallsBackToPeerAddressAndUnknownAgent(t *testing.T) {
	store := newMemoryStore()
	store.addPost(1, strPtr("a"), time.Now())
	r := setupRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/survey",
		bytes.NewBufferString(`{"post_id":1,"user_id":"x","published_by_user":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.44:51234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	store.mu.Lock()
	stored := store.responses[pairKey(1, "x")]
	store.mu.Unlock()
	require.NotNil(t, stored)
	assert.Equal(t, "192.0.2.44", stored.IPAddress)
	assert.Equal(t, defaultUserAgent, stored.UserAgent)
}

func TestStorageFailuresSurfaceAsServerErrors(t *testing.T) {
	r := setupRouter(failingStore{})

	req := httptest.NewRequest(http.MethodGet, "/posts/next/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doSubmit(t, r, `{"post_id":1,"user_id":"x","published_by_user":true}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/responses", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdminResponsesNewestFirst(t *testing.T) {
	store := newMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.addPost(1, strPtr("first post"), base)
	store.addPost(2, strPtr("second post"), base.Add(time.Minute))
	r := setupRouter(store)

	require.Equal(t, http.StatusOK, doSubmit(t, r, `{"post_id":1,"user_id":"x","published_by_user":true}`, nil).Code)
	time.Sleep(5 * time.Millisecond)
	require.Equal(t, http.StatusOK, doSubmit(t, r, `{"post_id":2,"user_id":"x","published_by_user":false}`, nil).Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/responses", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var rows []models.AdminResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Post)
	assert.Equal(t, "second post", *rows[0].Post)
	assert.False(t, rows[0].PublishedByUser)
	require.NotNil(t, rows[1].Post)
	assert.Equal(t, "first post", *rows[1].Post)
	assert.True(t, rows[1].PublishedByUser)
}
