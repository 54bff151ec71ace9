package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/grams-api/internal/api"
	"github.com/phrazzld/grams-api/internal/api/middleware"
	"github.com/phrazzld/grams-api/internal/api/shared"
	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/mocks"
	"github.com/phrazzld/grams-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gramRouter mounts h the way the server does, minus authentication.
func gramRouter(h *api.GramHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Route("/grams", func(r chi.Router) {
		r.Get("/", h.Index)
		r.Get("/new", h.New)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Show)
		r.Get("/{id}/edit", h.Edit)
		r.Patch("/{id}", h.Update)
		r.Put("/{id}", h.Update)
	})
	return r
}

func newGramTestHandler(t *testing.T) (http.Handler, *mocks.MockGramRepository) {
	t.Helper()
	repo := mocks.NewMockGramRepository()
	h := api.NewGramHandler(service.NewGramService(repo, nil), nil)
	return gramRouter(h), repo
}

func putGram(t *testing.T, repo *mocks.MockGramRepository, userID uuid.UUID, message string) *domain.Gram {
	t.Helper()
	g, err := domain.NewGram(userID, message)
	require.NoError(t, err)
	repo.Put(g)
	return g
}

func signedIn(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(shared.WithUserID(req.Context(), userID))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestGramHandler_Index(t *testing.T) {
	router, repo := newGramTestHandler(t)
	owner := uuid.New()
	older := putGram(t, repo, owner, "older")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	repo.Put(older)
	newer := putGram(t, repo, owner, "newer")

	for _, path := range []string{"/", "/grams"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			resp := decodeBody[api.GramListResponse](t, rec)
			require.Len(t, resp.Grams, 2)
			assert.Equal(t, newer.ID, resp.Grams[0].ID)
			assert.Equal(t, older.ID, resp.Grams[1].ID)
			assert.Equal(t, 2, resp.Total)
			assert.Equal(t, service.DefaultPageSize, resp.Limit)
		})
	}
}

func TestGramHandler_IndexPagination(t *testing.T) {
	router, repo := newGramTestHandler(t)
	for i := 0; i < 3; i++ {
		putGram(t, repo, uuid.New(), "gram")
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLen    int
		wantLimit  int
	}{
		{"one per page", "?limit=1&offset=1", http.StatusOK, 1, 1},
		{"past the end", "?offset=10", http.StatusOK, 0, service.DefaultPageSize},
		{"capped", "?limit=1000", http.StatusOK, 3, service.MaxPageSize},
		{"not a number", "?limit=ten", http.StatusBadRequest, 0, 0},
		{"negative", "?offset=-1", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/grams"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			resp := decodeBody[api.GramListResponse](t, rec)
			assert.Len(t, resp.Grams, tt.wantLen)
			assert.Equal(t, 3, resp.Total)
			assert.Equal(t, tt.wantLimit, resp.Limit)
		})
	}
}

func TestGramHandler_IndexServiceFailure(t *testing.T) {
	svc := &mocks.MockGramService{
		ListGramsFn: func(context.Context, int, int) ([]*domain.Gram, int, error) {
			return nil, 0, service.NewServiceError("gram", "list", errors.New("connection reset"))
		},
	}
	router := gramRouter(api.NewGramHandler(svc, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.Contains(t, rec.Body.String(), "Failed to list grams")
}

func TestGramHandler_Show(t *testing.T) {
	router, repo := newGramTestHandler(t)
	gram := putGram(t, repo, uuid.New(), "Hello!")

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/grams/" + gram.ID.String(), http.StatusOK},
		{"unknown id", "/grams/" + uuid.NewString(), http.StatusNotFound},
		{"not a uuid", "/grams/POTATO", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				resp := decodeBody[api.GramResponse](t, rec)
				assert.Equal(t, gram.ID, resp.ID)
				assert.Equal(t, "Hello!", resp.Message)
				assert.Equal(t, gram.UserID, resp.UserID)
			} else {
				assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
			}
		})
	}
}

func TestGramHandler_New(t *testing.T) {
	router, _ := newGramTestHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, signedIn(httptest.NewRequest(http.MethodGet, "/grams/new", nil), uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[api.GramFormResponse](t, rec)
	assert.Equal(t, "/grams", resp.Action)
	assert.Equal(t, http.MethodPost, resp.Method)
	assert.Nil(t, resp.Gram.ID)
	assert.Empty(t, resp.Gram.Message)
}

func TestGramHandler_Create(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		signedIn     bool
		wantStatus   int
		wantLocation string
		wantStored   int
		wantErrors   map[string][]string
	}{
		{
			name:         "anonymous",
			body:         `{"gram":{"message":"Hello!"}}`,
			wantStatus:   http.StatusFound,
			wantLocation: middleware.SignInPath,
		},
		{
			name:         "valid",
			body:         `{"gram":{"message":"Hello!"}}`,
			signedIn:     true,
			wantStatus:   http.StatusFound,
			wantLocation: api.RootPath,
			wantStored:   1,
		},
		{
			name:       "blank message",
			body:       `{"gram":{"message":""}}`,
			signedIn:   true,
			wantStatus: http.StatusUnprocessableEntity,
			wantErrors: map[string][]string{"message": {"can't be blank"}},
		},
		{
			name:       "unpermitted keys only",
			body:       `{"gram":{"user_id":"3"}}`,
			signedIn:   true,
			wantStatus: http.StatusUnprocessableEntity,
			wantErrors: map[string][]string{"message": {"can't be blank"}},
		},
		{
			name:       "missing gram",
			body:       `{"message":"Hello!"}`,
			signedIn:   true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"gram":`,
			signedIn:   true,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := newGramTestHandler(t)
			userID := uuid.New()

			req := jsonRequest(http.MethodPost, "/grams", tt.body)
			if tt.signedIn {
				req = signedIn(req, userID)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Len(t, repo.All(), tt.wantStored)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
			if tt.wantErrors != nil {
				resp := decodeBody[api.GramValidationErrorResponse](t, rec)
				assert.Equal(t, tt.wantErrors, resp.Errors)
			}
			if tt.wantStored == 1 {
				stored := repo.All()[0]
				assert.Equal(t, "Hello!", stored.Message)
				assert.Equal(t, userID, stored.UserID)
			}
		})
	}
}

func TestGramHandler_CreateAnonymousAlert(t *testing.T) {
	router, _ := newGramTestHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/grams", `{"gram":{"message":"Hello!"}}`))

	resp := decodeBody[shared.RedirectResponse](t, rec)
	assert.Equal(t, middleware.SignInAlert, resp.Alert)
}

func TestGramHandler_CreateOwnerMissing(t *testing.T) {
	repo := mocks.NewMockGramRepository()
	repo.Users = mocks.NewMockUserStore()
	router := gramRouter(api.NewGramHandler(service.NewGramService(repo, nil), nil))

	rec := httptest.NewRecorder()
	req := signedIn(jsonRequest(http.MethodPost, "/grams", `{"gram":{"message":"Hello!"}}`), uuid.New())
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeBody[api.GramValidationErrorResponse](t, rec)
	assert.Equal(t, []string{"must exist"}, resp.Errors["user"])
	assert.Equal(t, "Hello!", resp.Gram.Message)
	assert.Empty(t, repo.All())
}

func TestGramHandler_Edit(t *testing.T) {
	router, repo := newGramTestHandler(t)
	gram := putGram(t, repo, uuid.New(), "Initial value")

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/grams/"+gram.ID.String()+"/edit", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[api.GramFormResponse](t, rec)
		require.NotNil(t, resp.Gram.ID)
		assert.Equal(t, gram.ID, *resp.Gram.ID)
		assert.Equal(t, "Initial value", resp.Gram.Message)
		assert.Equal(t, "/grams/"+gram.ID.String(), resp.Action)
		assert.Equal(t, http.MethodPatch, resp.Method)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/grams/SWAG/edit", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGramHandler_Update(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		path        func(g *domain.Gram) string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "patch",
			method:      http.MethodPatch,
			body:        `{"gram":{"message":"Changed value"}}`,
			wantStatus:  http.StatusFound,
			wantMessage: "Changed value",
		},
		{
			name:        "put",
			method:      http.MethodPut,
			body:        `{"gram":{"message":"Changed value"}}`,
			wantStatus:  http.StatusFound,
			wantMessage: "Changed value",
		},
		{
			name:        "blank message",
			method:      http.MethodPatch,
			body:        `{"gram":{"message":""}}`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Initial value",
		},
		{
			name:        "missing gram",
			method:      http.MethodPatch,
			body:        `{}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Initial value",
		},
		{
			name:        "unknown id",
			method:      http.MethodPatch,
			path:        func(*domain.Gram) string { return "/grams/" + uuid.NewString() },
			body:        `{"gram":{"message":"Changed value"}}`,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Initial value",
		},
		{
			name:        "not a uuid with invalid body",
			method:      http.MethodPatch,
			path:        func(*domain.Gram) string { return "/grams/POTATO" },
			body:        `{"gram":{"message":""}}`,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Initial value",
		},
		{
			name:        "unknown id with invalid body",
			method:      http.MethodPatch,
			path:        func(*domain.Gram) string { return "/grams/" + uuid.NewString() },
			body:        `not json`,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Initial value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := newGramTestHandler(t)
			gram := putGram(t, repo, uuid.New(), "Initial value")

			path := "/grams/" + gram.ID.String()
			if tt.path != nil {
				path = tt.path(gram)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, jsonRequest(tt.method, path, tt.body))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusFound {
				assert.Equal(t, api.RootPath, rec.Header().Get("Location"))
			}

			stored, err := repo.GetByID(context.Background(), gram.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMessage, stored.Message)
		})
	}
}

func TestGramHandler_UpdateRendersFormOnValidationFailure(t *testing.T) {
	router, repo := newGramTestHandler(t)
	gram := putGram(t, repo, uuid.New(), "Initial value")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPatch, "/grams/"+gram.ID.String(), `{"gram":{"message":"   "}}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeBody[api.GramValidationErrorResponse](t, rec)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Equal(t, []string{"can't be blank"}, resp.Errors["message"])
	require.NotNil(t, resp.Gram.ID)
	assert.Equal(t, gram.ID, *resp.Gram.ID)
	assert.Equal(t, "   ", resp.Gram.Message)
}

func TestGramHandler_UpdateServiceFailure(t *testing.T) {
	gram, err := domain.NewGram(uuid.New(), "Initial value")
	require.NoError(t, err)
	svc := &mocks.MockGramService{
		GetGramFn: func(context.Context, uuid.UUID) (*domain.Gram, error) { return gram, nil },
		UpdateGramFn: func(context.Context, uuid.UUID, string) (*domain.Gram, error) {
			return nil, service.NewServiceError("gram", "update", errors.New("deadlock detected"))
		},
	}
	router := gramRouter(api.NewGramHandler(svc, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPatch, "/grams/"+gram.ID.String(), `{"gram":{"message":"x"}}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "deadlock")
}

func TestNewGramHandler_NilService(t *testing.T) {
	assert.Panics(t, func() { api.NewGramHandler(nil, nil) })
}
