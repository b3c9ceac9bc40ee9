package httpapi_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/odds-cache-service/internal/odds-service/cache"
	httpapi "github.com/radieske/odds-cache-service/internal/odds-service/http"
	"github.com/radieske/odds-cache-service/internal/odds-service/dto"
	"github.com/radieske/odds-cache-service/internal/odds-service/loader"
	"github.com/radieske/odds-cache-service/internal/odds-service/model"
	"github.com/radieske/odds-cache-service/internal/odds-service/repo"
	"github.com/radieske/odds-cache-service/internal/odds-service/service"
)

type apiEnv struct {
	handler http.Handler
	store   *repo.MemoryStore
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	store := repo.NewMemoryStore()
	store.AddCreator(model.Creator{ID: 3, Username: "maria", Role: model.RoleBookmaker})
	local, err := cache.NewLocalCache(cache.DefaultLocalConfig(time.Minute))
	require.NoError(t, err)
	log := zap.NewNop()

	svc := service.New(store, local, loader.NewBatchLoader(store, log), log, service.Config{})
	api := &httpapi.API{Log: log, Service: svc}
	return &apiEnv{handler: api.Router(), store: store}
}

func (e *apiEnv) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func createBody(home string) map[string]any {
	return map[string]any{
		"sport":     "football",
		"homeTeam":  "Palmeiras",
		"awayTeam":  "Santos",
		"homeOdds":  home,
		"drawOdds":  "3.40",
		"awayOdds":  "3.60",
		"matchDate": time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAPI_Lifecycle(t *testing.T) {
	e := newAPI(t)

	rec := e.do(t, http.MethodPost, "/v1/odds", createBody("2.10"), map[string]string{httpapi.HeaderUserID: "3"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dto.OddsView](t, rec)
	assert.True(t, created.Active)
	assert.Equal(t, int64(3), created.CreatedBy)
	path := "/v1/odds/" + strconv.FormatInt(created.ID, 10)

	rec = e.do(t, http.MethodGet, path+"?margin=true", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	withMargin := decode[dto.OddsView](t, rec)
	require.NotNil(t, withMargin.Margin)
	assert.Equal(t, "4.81", withMargin.Margin.String())

	update := createBody("1.95")
	rec = e.do(t, http.MethodPut, path, update, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	e.store.ResetQueries()
	rec = e.do(t, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.95", decode[dto.OddsView](t, rec).HomeOdds.StringFixed(2))
	assert.Zero(t, e.store.TotalQueries(), "served from the refreshed cache entry")

	rec = e.do(t, http.MethodPatch, path+"/deactivate", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[dto.OddsView](t, rec).Active)

	rec = e.do(t, http.MethodGet, "/v1/odds?sport=football&active=false", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]dto.OddsView](t, rec)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Creator)
	assert.Equal(t, "maria", list[0].Creator.Username)

	rec = e.do(t, http.MethodDelete, path, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = e.do(t, http.MethodDelete, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_BadRequests(t *testing.T) {
	e := newAPI(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		header map[string]string
	}{
		{"odds above range", http.MethodPost, "/v1/odds", createBody("1000.00"), nil},
		{"odds below range", http.MethodPost, "/v1/odds", createBody("1.00"), nil},
		{"three decimals", http.MethodPost, "/v1/odds", createBody("2.105"), nil},
		{"bad user header", http.MethodPost, "/v1/odds", createBody("2.10"), map[string]string{httpapi.HeaderUserID: "abc"}},
		{"non numeric id", http.MethodGet, "/v1/odds/abc", nil, nil},
		{"bad active filter", http.MethodGet, "/v1/odds?active=maybe", nil, nil},
		{"bad from filter", http.MethodGet, "/v1/odds?from=yesterday", nil, nil},
		{"inverted range", http.MethodGet, "/v1/odds?from=2026-12-01T00:00:00Z&to=2026-11-01T00:00:00Z", nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.do(t, tc.method, tc.path, tc.body, tc.header)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[dto.ErrorResponse](t, rec).Error)
		})
	}
}

func TestAPI_StoreFailureIsServiceUnavailable(t *testing.T) {
	e := newAPI(t)
	e.store.FailWith(errors.New("pq: too many connections"))

	rec := e.do(t, http.MethodGet, "/v1/odds/1", nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "too many connections")
}

func TestAPI_RequestIDHeader(t *testing.T) {
	e := newAPI(t)

	rec := e.do(t, http.MethodGet, "/v1/odds/1", nil, map[string]string{"X-Request-Id": "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))

	rec = e.do(t, http.MethodGet, "/v1/odds/1", nil, nil)
	assert.Len(t, rec.Header().Get("X-Request-Id"), 36, "generated uuid")
}
