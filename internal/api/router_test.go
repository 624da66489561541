package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quizlearn/data-gateway/internal/core/domain"
	"github.com/quizlearn/data-gateway/internal/core/ports"
	"github.com/quizlearn/data-gateway/pkg/logger"
)

type noopStore struct{}

func (noopStore) Find(context.Context, string, map[string]any, *ports.FindOptions) ([]map[string]any, error) {
	return []map[string]any{}, nil
}
func (noopStore) FindOne(context.Context, string, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (noopStore) InsertOne(context.Context, string, map[string]any) (string, error) { return "", nil }
func (noopStore) InsertMany(context.Context, string, []any) ([]string, error)       { return nil, nil }
func (noopStore) UpdateOne(context.Context, string, map[string]any, map[string]any) (*ports.UpdateResult, error) {
	return &ports.UpdateResult{}, nil
}
func (noopStore) UpdateMany(context.Context, string, map[string]any, map[string]any) (*ports.UpdateResult, error) {
	return &ports.UpdateResult{}, nil
}
func (noopStore) DeleteOne(context.Context, string, map[string]any) (int64, error)  { return 0, nil }
func (noopStore) DeleteMany(context.Context, string, map[string]any) (int64, error) { return 0, nil }
func (noopStore) Aggregate(context.Context, string, []any) ([]map[string]any, error) {
	return []map[string]any{}, nil
}
func (noopStore) Count(context.Context, string, map[string]any) (int64, error) { return 0, nil }

type noopAuth struct{}

func (noopAuth) Register(context.Context, string, string, string) (*domain.User, error) {
	return &domain.User{}, nil
}
func (noopAuth) Login(context.Context, string, string) (string, *domain.User, error) {
	return "", &domain.User{}, nil
}
func (noopAuth) VerifyToken(context.Context, string) (*domain.User, error) {
	return &domain.User{}, nil
}

// testRouter is built once: the prometheus middleware registers collectors in
// the default registry, and a second registration would panic.
var testRouter *echo.Echo

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	if testRouter == nil {
		logger.Reset()
		logger.Init(logger.Options{Level: "error"})
		testRouter = NewRouter(nil, nil, noopStore{}, noopAuth{})
	}
	return testRouter
}

func TestRouter_PreflightAnsweredUnconditionally(t *testing.T) {
	e := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/gateway", nil)
	req.Header.Set(echo.HeaderOrigin, "https://quiz.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	req.Header.Set(echo.HeaderAccessControlRequestHeaders, "authorization, apikey, content-type")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
	allowed := rec.Header().Get(echo.HeaderAccessControlAllowHeaders)
	for _, h := range []string{"authorization", "x-client-info", "apikey", "content-type"} {
		if !strings.Contains(allowed, h) {
			t.Fatalf("header %q missing from %q", h, allowed)
		}
	}
}

func TestRouter_UnknownActionMappedTo400(t *testing.T) {
	e := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/gateway",
		strings.NewReader(`{"action":"explode","collection":"users"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "unknown action: explode" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestRouter_FindReturnsDataEnvelope(t *testing.T) {
	e := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/gateway",
		strings.NewReader(`{"action":"find","collection":"quizzes","query":{}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("missing data envelope: %v", body)
	}
}

func TestRouter_Liveness(t *testing.T) {
	e := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
