package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"yamdb/internal/app"
	"yamdb/internal/config"
	"yamdb/internal/models"
	"yamdb/internal/notify"
	"yamdb/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// chanNotifier hands every confirmation message to the test.
type chanNotifier chan notify.Message

func (n chanNotifier) Send(_ context.Context, msg notify.Message) error {
	n <- msg
	return nil
}

type testEnv struct {
	app  *fiber.App
	db   *gorm.DB
	mail chanNotifier
}

// setupApp builds the full application on a private in-memory SQLite database.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := app.OpenDB("sqlite", dsn)
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, app.Migrate(db))

	cfg := config.Config{
		JWTSecret:     "test_jwt_secret",
		TokenTTL:      time.Hour,
		PageSize:      5,
		NotifyTimeout: time.Second,
	}
	mail := make(chanNotifier, 16)
	fiberApp, _, err := app.New(cfg, db, mail)
	require.NoError(t, err)
	return &testEnv{app: fiberApp, db: db, mail: mail}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// do sends a request and decodes a JSON object response, if any.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// signUp registers username and returns the mailed confirmation code.
func (e *testEnv) signUp(t *testing.T, username string) string {
	t.Helper()
	status, _ := e.do(t, http.MethodPost, "/api/v1/auth/signup/", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
	})
	require.Equal(t, http.StatusOK, status)
	return e.code(t)
}

func (e *testEnv) code(t *testing.T) string {
	t.Helper()
	select {
	case msg := <-e.mail:
		fields := strings.Fields(msg.Body)
		return fields[len(fields)-1]
	case <-time.After(2 * time.Second):
		t.Fatal("no confirmation code was mailed")
		return ""
	}
}

// login signs username up with role and returns an access token.
func (e *testEnv) login(t *testing.T, username string, role models.Role) string {
	t.Helper()
	code := e.signUp(t, username)
	if role != models.RoleUser {
		require.NoError(t, e.db.Model(&models.User{}).Where("username = ?", username).Update("role", role).Error)
	}
	status, body := e.do(t, http.MethodPost, "/api/v1/auth/token/", "", map[string]string{
		"username":          username,
		"confirmation_code": code,
	})
	require.Equal(t, http.StatusCreated, status)
	return body["token"].(string)
}

// seedCatalog creates a category, a genre and one title as admin.
func (e *testEnv) seedCatalog(t *testing.T, adminToken string) int {
	t.Helper()
	status, _ := e.do(t, http.MethodPost, "/api/v1/categories/", adminToken, map[string]string{"name": "Book"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = e.do(t, http.MethodPost, "/api/v1/genres/", adminToken, map[string]string{"name": "Science fiction", "slug": "sci-fi"})
	require.Equal(t, http.StatusCreated, status)

	status, body := e.do(t, http.MethodPost, "/api/v1/titles/", adminToken, map[string]any{
		"name":     "Dune",
		"year":     1965,
		"genre":    []string{"sci-fi"},
		"category": "book",
	})
	require.Equal(t, http.StatusCreated, status, body)
	return int(body["id"].(float64))
}

func TestHealthCheck(t *testing.T) {
	e := setupApp(t)
	status, body := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestSignUpAndToken(t *testing.T) {
	e := setupApp(t)

	code := e.signUp(t, "alice")
	assert.Len(t, code, 4)

	// Repeating the sign-up fails but mails a fresh code
	status, body := e.do(t, http.MethodPost, "/api/v1/auth/signup/", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])
	code = e.code(t)

	// Reserved username
	status, body = e.do(t, http.MethodPost, "/api/v1/auth/signup/", "", map[string]string{
		"username": "me",
		"email":    "me@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "username")

	// Wrong code
	status, body = e.do(t, http.MethodPost, "/api/v1/auth/token/", "", map[string]string{
		"username":          "alice",
		"confirmation_code": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "confirmation_code")

	// Unknown user
	status, _ = e.do(t, http.MethodPost, "/api/v1/auth/token/", "", map[string]string{
		"username":          "ghost",
		"confirmation_code": code,
	})
	assert.Equal(t, http.StatusNotFound, status)

	// Latest code works
	status, body = e.do(t, http.MethodPost, "/api/v1/auth/token/", "", map[string]string{
		"username":          "alice",
		"confirmation_code": code,
	})
	require.Equal(t, http.StatusCreated, status)
	token := body["token"].(string)

	status, body = e.do(t, http.MethodGet, "/api/v1/users/me/", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "user", body["role"])

	status, _ = e.do(t, http.MethodGet, "/api/v1/users/me/", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestTitlesAccess(t *testing.T) {
	e := setupApp(t)
	adminToken := e.login(t, "root", models.RoleAdmin)
	userToken := e.login(t, "alice", models.RoleUser)

	// Anonymous read of an empty catalog
	status, body := e.do(t, http.MethodGet, "/api/v1/titles/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])
	assert.Empty(t, body["results"])

	payload := map[string]any{"name": "Dune", "year": 1965, "genre": []string{"sci-fi"}, "category": "book"}
	status, _ = e.do(t, http.MethodPost, "/api/v1/titles/", "", payload)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = e.do(t, http.MethodPost, "/api/v1/titles/", userToken, payload)
	assert.Equal(t, http.StatusForbidden, status)

	id := e.seedCatalog(t, adminToken)

	status, body = e.do(t, http.MethodGet, "/api/v1/titles/?genre=sci", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])
	assert.Nil(t, body["next"])
	assert.Nil(t, body["previous"])

	status, body = e.do(t, http.MethodGet, "/api/v1/titles/?year=2000", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])

	status, body = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/titles/%d/", id), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["rating"])
	assert.Equal(t, "book", body["category"].(map[string]any)["slug"])

	// A title cannot be renamed to an empty name
	status, body = e.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/titles/%d/", id), adminToken, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "name")
	status, _ = e.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/titles/%d/", id), adminToken, map[string]any{"year": 0})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = e.do(t, http.MethodPatch, "/api/v1/categories/book/", adminToken, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	status, body = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/titles/%d/", id), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Dune", body["name"])

	status, _ = e.do(t, http.MethodGet, "/api/v1/titles/abc/", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Deleting the category keeps the title
	status, _ = e.do(t, http.MethodDelete, "/api/v1/categories/book/", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = e.do(t, http.MethodDelete, "/api/v1/categories/book/", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, body = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/titles/%d/", id), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["category"])
}

func TestPagination(t *testing.T) {
	e := setupApp(t)
	adminToken := e.login(t, "root", models.RoleAdmin)

	for i := 0; i < 7; i++ {
		status, _ := e.do(t, http.MethodPost, "/api/v1/genres/", adminToken, map[string]string{"name": fmt.Sprintf("Genre %d", i)})
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := e.do(t, http.MethodGet, "/api/v1/genres/", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(7), body["count"])
	assert.Len(t, body["results"], 5)
	assert.Contains(t, body["next"], "page=2")
	assert.Nil(t, body["previous"])

	status, body = e.do(t, http.MethodGet, "/api/v1/genres/?page=2", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["results"], 2)
	assert.Nil(t, body["next"])
	assert.Contains(t, body["previous"], "page=1")

	// Out-of-range pages are clamped and come back empty
	status, body = e.do(t, http.MethodGet, "/api/v1/genres/?page=9223372036854775807", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(7), body["count"])
	assert.Empty(t, body["results"])
	assert.Nil(t, body["next"])
	assert.Contains(t, body["previous"], fmt.Sprintf("page=%d", repositories.MaxPageNumber-1))
}

func TestReviewsAndComments(t *testing.T) {
	e := setupApp(t)
	adminToken := e.login(t, "root", models.RoleAdmin)
	aliceToken := e.login(t, "alice", models.RoleUser)
	bobToken := e.login(t, "bob", models.RoleUser)
	modToken := e.login(t, "mod", models.RoleModerator)
	id := e.seedCatalog(t, adminToken)
	reviews := fmt.Sprintf("/api/v1/titles/%d/reviews/", id)

	status, _ := e.do(t, http.MethodPost, reviews, "", map[string]any{"text": "anon", "score": 5})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := e.do(t, http.MethodPost, reviews, aliceToken, map[string]any{"text": "great", "score": 6})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "alice", body["author"])
	assert.Equal(t, "Dune", body["title"])
	reviewID := int(body["id"].(float64))

	status, _ = e.do(t, http.MethodPost, reviews, aliceToken, map[string]any{"text": "again", "score": 9})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = e.do(t, http.MethodPost, reviews, bobToken, map[string]any{"text": "fine", "score": 11})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = e.do(t, http.MethodPost, reviews, bobToken, map[string]any{"text": "fine", "score": 8})
	require.Equal(t, http.StatusCreated, status)

	status, body = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/titles/%d/", id), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 7.0, body["rating"], 0.0001)

	review := fmt.Sprintf("%s%d/", reviews, reviewID)
	status, _ = e.do(t, http.MethodPatch, review, bobToken, map[string]any{"score": 1})
	assert.Equal(t, http.StatusForbidden, status)
	status, body = e.do(t, http.MethodPatch, review, aliceToken, map[string]any{"score": 7})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(7), body["score"])

	comments := review + "comments/"
	status, body = e.do(t, http.MethodPost, comments, aliceToken, map[string]any{"text": "me again"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "alice", body["author"])
	comment := fmt.Sprintf("%s%d/", comments, int(body["id"].(float64)))

	status, body = e.do(t, http.MethodGet, comments, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	// Review of another title
	status, _ = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments/", id+1, reviewID), "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = e.do(t, http.MethodDelete, comment, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = e.do(t, http.MethodDelete, comment, modToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = e.do(t, http.MethodGet, comment, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUserManagement(t *testing.T) {
	e := setupApp(t)
	adminToken := e.login(t, "root", models.RoleAdmin)
	aliceToken := e.login(t, "alice", models.RoleUser)

	// Own role cannot be raised
	status, body := e.do(t, http.MethodPatch, "/api/v1/users/me/", aliceToken, map[string]any{"role": "admin", "bio": "reader"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user", body["role"])
	assert.Equal(t, "reader", body["bio"])

	status, _ = e.do(t, http.MethodPatch, "/api/v1/users/alice/", aliceToken, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = e.do(t, http.MethodGet, "/api/v1/users/", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = e.do(t, http.MethodGet, "/api/v1/users/me/", "", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = e.do(t, http.MethodPatch, "/api/v1/users/alice/", adminToken, map[string]any{"role": "moderator"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "moderator", body["role"])

	// The new role applies to the token issued earlier
	status, body = e.do(t, http.MethodGet, "/api/v1/users/me/", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "moderator", body["role"])

	status, _ = e.do(t, http.MethodPost, "/api/v1/users/", adminToken, map[string]any{"username": "carol", "email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, body = e.do(t, http.MethodPost, "/api/v1/users/", adminToken, map[string]any{"username": "carol", "email": "carol@example.com"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "user", body["role"])
	status, _ = e.do(t, http.MethodPost, "/api/v1/users/", adminToken, map[string]any{"username": "carol", "email": "carol2@example.com"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = e.do(t, http.MethodGet, "/api/v1/users/", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), body["count"])

	status, _ = e.do(t, http.MethodGet, "/api/v1/users/ghost/", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
