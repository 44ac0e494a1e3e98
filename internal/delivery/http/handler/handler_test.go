package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/profile-collector/internal/collector"
	"github.com/user/profile-collector/internal/delivery/http/handler"
	"github.com/user/profile-collector/internal/delivery/http/response"
	"github.com/user/profile-collector/internal/delivery/http/router"
	"github.com/user/profile-collector/internal/entity"
	"github.com/user/profile-collector/internal/repository"
	"github.com/user/profile-collector/internal/usecase"
	"go.uber.org/zap"
)

type fakeRunManager struct {
	submitted []usecase.SubmitRunRequest
	submitErr error
	runs      map[string]*entity.CollectionRun
	profiles  map[string][]entity.ProfileRecord
}

func (f *fakeRunManager) Submit(_ context.Context, req usecase.SubmitRunRequest) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, req)
	return "run-123", nil
}

func (f *fakeRunManager) GetRun(_ context.Context, id string) (*entity.CollectionRun, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return run, nil
}

func (f *fakeRunManager) ListProfiles(_ context.Context, id string) ([]entity.ProfileRecord, error) {
	if _, ok := f.runs[id]; !ok {
		return nil, repository.ErrNotFound
	}
	return f.profiles[id], nil
}

func newServer(t *testing.T, rm usecase.RunManager, checks map[string]handler.HealthCheck) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(router.New(handler.NewHandler(rm, checks, zap.NewNop()), zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHandleSubmitRun(t *testing.T) {
	rm := &fakeRunManager{}
	srv := newServer(t, rm, nil)

	body := `{"search_url":"https://www.linkedin.com/search/results/people/?keywords=go","force":true,"max_records":25,"settle_delay_ms":1500}`
	resp, err := http.Post(srv.URL+"/api/runs", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var out response.SubmitRunResponse
	decode(t, resp, &out)
	assert.Equal(t, "run-123", out.RunID)
	assert.Equal(t, "success", out.Status)

	require.Len(t, rm.submitted, 1)
	got := rm.submitted[0]
	assert.True(t, got.Force)
	require.NotNil(t, got.Limits.MaxRecords)
	assert.Equal(t, 25, *got.Limits.MaxRecords)
	require.NotNil(t, got.Limits.SettleDelay)
	assert.Equal(t, 1500*time.Millisecond, *got.Limits.SettleDelay)
	assert.Nil(t, got.Limits.StagnationLimit)
}

func TestHandleSubmitRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"invalid url", `{"search_url":"nope"}`, usecase.ErrInvalidSearchURL, http.StatusBadRequest},
		{"invalid limits", `{"search_url":"https://x.test/s","stagnation_limit":0}`, usecase.ErrInvalidLimits, http.StatusBadRequest},
		{"recently collected", `{"search_url":"https://x.test/s"}`, usecase.ErrSearchRecentlyCollected, http.StatusConflict},
		{"backend down", `{"search_url":"https://x.test/s"}`, errors.New("redis: connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, &fakeRunManager{submitErr: tt.err}, nil)
			resp, err := http.Post(srv.URL+"/api/runs", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var out map[string]string
			decode(t, resp, &out)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestHandleGetRun(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	rm := &fakeRunManager{runs: map[string]*entity.CollectionRun{
		"r1": {ID: "r1", SearchURL: "https://x.test/s", Status: entity.RunCompleted, StopReason: entity.StopStagnation, Passes: 4, RecordCount: 12, SubmittedAt: now},
	}}
	srv := newServer(t, rm, nil)

	resp, err := http.Get(srv.URL + "/api/runs/r1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out response.RunResponse
	decode(t, resp, &out)
	assert.Equal(t, "completed", out.Status)
	assert.Equal(t, "stagnation", out.StopReason)
	assert.Equal(t, 12, out.RecordCount)

	resp, err = http.Get(srv.URL + "/api/runs/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// uuidColumnRuns fails every lookup the way a UUID column rejects malformed input.
type uuidColumnRuns struct {
	repository.RunRepository
	lookups int
}

func (r *uuidColumnRuns) FindByID(_ context.Context, _ string) (*entity.CollectionRun, error) {
	r.lookups++
	return nil, errors.New(`invalid input syntax for type uuid: "not-a-uuid"`)
}

func TestHandleGetRun_MalformedID(t *testing.T) {
	runs := &uuidColumnRuns{}
	rm := usecase.NewRunManager(nil, nil, runs, nil, collector.DefaultConfig(), 0, zap.NewNop())
	srv := newServer(t, rm, nil)

	for _, path := range []string{"/api/runs/not-a-uuid", "/api/runs/not-a-uuid/profiles"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
	assert.Zero(t, runs.lookups)
}

func TestHandleListProfiles(t *testing.T) {
	records := []entity.ProfileRecord{
		{URL: "https://x.test/in/a", Name: "A", Headline: entity.NoHeadline, Location: "Lisbon"},
		{URL: "https://x.test/in/b", Name: entity.UnknownName, Headline: "CTO", Location: entity.UnknownLocation},
	}
	rm := &fakeRunManager{
		runs:     map[string]*entity.CollectionRun{"r1": {ID: "r1"}},
		profiles: map[string][]entity.ProfileRecord{"r1": records},
	}
	srv := newServer(t, rm, nil)

	resp, err := http.Get(srv.URL + "/api/runs/r1/profiles")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out response.ProfilesResponse
	decode(t, resp, &out)
	assert.Equal(t, "r1", out.RunID)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, records, out.Profiles)
}

func TestHandleHealthCheck(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	srv := newServer(t, &fakeRunManager{}, map[string]handler.HealthCheck{"postgres": ok, "redis": ok})
	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]string
	decode(t, resp, &out)
	assert.Equal(t, map[string]string{"postgres": "healthy", "redis": "healthy"}, out)

	srv = newServer(t, &fakeRunManager{}, map[string]handler.HealthCheck{"postgres": ok, "redis": down})
	resp, err = http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	decode(t, resp, &out)
	assert.Equal(t, "unhealthy", out["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t, &fakeRunManager{}, nil)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
