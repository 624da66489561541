package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quizlearn/data-gateway/internal/core/domain"
	"github.com/quizlearn/data-gateway/internal/core/ports"
)

type stubStore struct {
	lastCollection string
	lastFilter     map[string]any
	lastOptions    *ports.FindOptions
	findResult     []map[string]any
	countResult    int64
	err            error
}

func (s *stubStore) Find(_ context.Context, collection string, filter map[string]any, opts *ports.FindOptions) ([]map[string]any, error) {
	s.lastCollection, s.lastFilter, s.lastOptions = collection, filter, opts
	return s.findResult, s.err
}

func (s *stubStore) FindOne(_ context.Context, collection string, filter map[string]any) (map[string]any, error) {
	s.lastCollection, s.lastFilter = collection, filter
	if len(s.findResult) == 0 {
		return nil, s.err
	}
	return s.findResult[0], s.err
}

func (s *stubStore) InsertOne(_ context.Context, collection string, _ map[string]any) (string, error) {
	s.lastCollection = collection
	return "507f1f77bcf86cd799439011", s.err
}

func (s *stubStore) InsertMany(_ context.Context, collection string, docs []any) ([]string, error) {
	s.lastCollection = collection
	ids := make([]string, len(docs))
	return ids, s.err
}

func (s *stubStore) UpdateOne(_ context.Context, collection string, filter, _ map[string]any) (*ports.UpdateResult, error) {
	s.lastCollection, s.lastFilter = collection, filter
	return &ports.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, s.err
}

func (s *stubStore) UpdateMany(_ context.Context, collection string, filter, _ map[string]any) (*ports.UpdateResult, error) {
	s.lastCollection, s.lastFilter = collection, filter
	return &ports.UpdateResult{MatchedCount: 2, ModifiedCount: 2}, s.err
}

func (s *stubStore) DeleteOne(_ context.Context, collection string, filter map[string]any) (int64, error) {
	s.lastCollection, s.lastFilter = collection, filter
	return 1, s.err
}

func (s *stubStore) DeleteMany(_ context.Context, collection string, filter map[string]any) (int64, error) {
	s.lastCollection, s.lastFilter = collection, filter
	return 3, s.err
}

func (s *stubStore) Aggregate(_ context.Context, collection string, _ []any) ([]map[string]any, error) {
	s.lastCollection = collection
	return s.findResult, s.err
}

func (s *stubStore) Count(_ context.Context, collection string, filter map[string]any) (int64, error) {
	s.lastCollection, s.lastFilter = collection, filter
	return s.countResult, s.err
}

type stubAuth struct {
	user      *domain.User
	token     string
	lastToken string
	err       error
}

func (a *stubAuth) Register(_ context.Context, email, _, name string) (*domain.User, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &domain.User{ID: "507f1f77bcf86cd799439011", Email: email, Name: name, Role: domain.RoleStudent}, nil
}

func (a *stubAuth) Login(_ context.Context, email, _ string) (string, *domain.User, error) {
	if a.err != nil {
		return "", nil, a.err
	}
	return a.token, &domain.User{ID: "507f1f77bcf86cd799439011", Email: email}, nil
}

func (a *stubAuth) VerifyToken(_ context.Context, token string) (*domain.User, error) {
	a.lastToken = token
	if a.err != nil {
		return nil, a.err
	}
	return a.user, nil
}

func dispatch(t *testing.T, store ports.Store, auth ports.AuthService, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(http.MethodPost, "/api/gateway", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewGatewayHandler(store, auth)
	return rec, h.Dispatch(c)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestDispatch_UnknownAction(t *testing.T) {
	store := &stubStore{}
	_, err := dispatch(t, store, &stubAuth{}, `{"action":"dropDatabase","collection":"users"}`)
	if !errors.Is(err, domain.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if store.lastCollection != "" {
		t.Fatalf("store touched for unknown action")
	}
}

func TestDispatch_MissingAction(t *testing.T) {
	_, err := dispatch(t, &stubStore{}, &stubAuth{}, `{"collection":"users"}`)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestDispatch_Find(t *testing.T) {
	store := &stubStore{findResult: []map[string]any{{"title": "algebra"}}}
	rec, err := dispatch(t, store, &stubAuth{},
		`{"action":"find","collection":"quizzes","query":{"subject":"math"},"options":{"sort":{"created_at":-1},"limit":10}}`)
	if err != nil {
		t.Fatalf("dispatch error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.lastCollection != "quizzes" {
		t.Fatalf("unexpected collection: %s", store.lastCollection)
	}
	if store.lastFilter["subject"] != "math" {
		t.Fatalf("filter not forwarded: %v", store.lastFilter)
	}
	if store.lastOptions == nil || store.lastOptions.Limit != 10 {
		t.Fatalf("options not forwarded: %+v", store.lastOptions)
	}

	body := decodeBody(t, rec)
	docs, ok := body["data"].([]any)
	if !ok || len(docs) != 1 {
		t.Fatalf("unexpected data: %v", body["data"])
	}
}

func TestDispatch_InsertOne(t *testing.T) {
	store := &stubStore{}
	rec, err := dispatch(t, store, &stubAuth{},
		`{"action":"insertOne","collection":"bookmarks","data":{"question_id":"q1"}}`)
	if err != nil {
		t.Fatalf("dispatch error: %v", err)
	}

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	if data["insertedId"] != "507f1f77bcf86cd799439011" {
		t.Fatalf("unexpected insertedId: %v", data["insertedId"])
	}
}

func TestDispatch_InsertOne_MissingData(t *testing.T) {
	_, err := dispatch(t, &stubStore{}, &stubAuth{}, `{"action":"insertOne","collection":"bookmarks"}`)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestDispatch_DeleteMany(t *testing.T) {
	rec, err := dispatch(t, &stubStore{}, &stubAuth{},
		`{"action":"deleteMany","collection":"attempts","query":{"user_id":"u1"}}`)
	if err != nil {
		t.Fatalf("dispatch error: %v", err)
	}
	data := decodeBody(t, rec)["data"].(map[string]any)
	if data["deletedCount"] != float64(3) {
		t.Fatalf("unexpected deletedCount: %v", data["deletedCount"])
	}
}

func TestDispatch_Count(t *testing.T) {
	store := &stubStore{countResult: 42}
	rec, err := dispatch(t, store, &stubAuth{}, `{"action":"count","collection":"questions","query":{}}`)
	if err != nil {
		t.Fatalf("dispatch error: %v", err)
	}
	if decodeBody(t, rec)["data"] != float64(42) {
		t.Fatalf("unexpected count: %v", decodeBody(t, rec)["data"])
	}
}

func TestDispatch_Register(t *testing.T) {
	rec, err := dispatch(t, &stubStore{}, &stubAuth{},
		`{"action":"register","collection":"users","data":{"email":"a@x.com","password":"pw123456","name":"Ana"}}`)
	if err != nil {
		t.Fatalf("dispatch error: %v", err)
	}

	data := decodeBody(t, rec)["data"].(map[string]any)
	user := data["user"].(map[string]any)
	if user["email"] != "a@x.com" {
		t.Fatalf("unexpected user: %v", user)
	}
	if _, hasToken := data["token"]; hasToken {
		t.Fatalf("register must not issue a token")
	}
	if _, hasPassword := user["password"]; hasPassword {
		t.Fatalf("password leaked in response")
	}
}

func TestDispatch_Register_InvalidPayload(t *testing.T) {
	cases := []string{
		`{"action":"register","data":{"email":"not-an-email","password":"pw123456","name":"Ana"}}`,
		`{"action":"register","data":{"email":"a@x.com","password":"short","name":"Ana"}}`,
		`{"action":"register","data":{"email":"a@x.com","password":"pw123456"}}`,
	}
	for _, body := range cases {
		_, err := dispatch(t, &stubStore{}, &stubAuth{}, body)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 HTTPError, got %v", body, err)
		}
	}
}

func TestDispatch_Login(t *testing.T) {
	rec, err := dispatch(t, &stubStore{}, &stubAuth{token: "tok123"},
		`{"action":"login","collection":"users","data":{"email":"a@x.com","password":"pw123456"}}`)
	if err != nil {
		t.Fatalf("dispatch error: %v", err)
	}

	data := decodeBody(t, rec)["data"].(map[string]any)
	if data["token"] != "tok123" {
		t.Fatalf("unexpected token: %v", data["token"])
	}
	if data["user"].(map[string]any)["email"] != "a@x.com" {
		t.Fatalf("unexpected user: %v", data["user"])
	}
}

func TestDispatch_Login_BadCredentials(t *testing.T) {
	_, err := dispatch(t, &stubStore{}, &stubAuth{err: domain.ErrInvalidCredentials},
		`{"action":"login","data":{"email":"a@x.com","password":"wrong"}}`)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestDispatch_VerifyToken(t *testing.T) {
	auth := &stubAuth{user: &domain.User{ID: "507f1f77bcf86cd799439011", Email: "a@x.com"}}
	rec, err := dispatch(t, &stubStore{}, auth,
		`{"action":"verifyToken","collection":"ignored","data":{"token":"tok123"}}`)
	if err != nil {
		t.Fatalf("dispatch error: %v", err)
	}
	if auth.lastToken != "tok123" {
		t.Fatalf("token not forwarded: %s", auth.lastToken)
	}
	data := decodeBody(t, rec)["data"].(map[string]any)
	if data["user"].(map[string]any)["email"] != "a@x.com" {
		t.Fatalf("unexpected user: %v", data["user"])
	}
}

func TestDispatch_VerifyToken_Expired(t *testing.T) {
	_, err := dispatch(t, &stubStore{}, &stubAuth{err: domain.ErrTokenExpired},
		`{"action":"verifyToken","data":{"token":"stale"}}`)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
