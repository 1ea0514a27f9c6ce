package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/internal/tasks"
	"github.com/nhle/taskboard/tests/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	srv   *Server
	store *store.SQLiteStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := testutil.NewTestStore(t)
	return &testServer{srv: NewServer(st, nil), store: st}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, req)
	return w
}

func TestListReturnsArray(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	seeded := testutil.Seed(t, ts.store, "a", "b")
	w = ts.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, seeded, got)
}

func TestListQuery(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	for _, task := range []model.Task{
		{Name: "write docs", Description: "user guide", Status: model.StatusNotCompleted, AssignDate: "2024-01-01", LastDate: "2024-01-20"},
		{Name: "ship", Description: "release notes", Status: model.StatusCompleted, AssignDate: "2024-01-01", LastDate: "2024-01-05"},
		{Name: "review", Description: "docs pass", Status: model.StatusNotCompleted, AssignDate: "2024-01-01", LastDate: "2024-01-10"},
	} {
		_, err := ts.store.CreateTask(ctx, task)
		require.NoError(t, err)
	}

	names := func(t *testing.T, path string) []string {
		t.Helper()
		w := ts.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "3", w.Header().Get("X-Total-Count"))

		var got []model.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		out := make([]string, 0, len(got))
		for _, task := range got {
			out = append(out, task.Name)
		}
		return out
	}

	tests := []struct {
		path string
		want []string
	}{
		{"/api/tasks", []string{"write docs", "ship", "review"}},
		{"/api/tasks?status=completed", []string{"ship"}},
		{"/api/tasks?status=incomplete", []string{"write docs", "review"}},
		{"/api/tasks?status=all", []string{"write docs", "ship", "review"}},
		{"/api/tasks?q=docs", []string{"write docs", "review"}},
		{"/api/tasks?q=docs&status=open", []string{"write docs", "review"}},
		{"/api/tasks?limit=1", []string{"write docs"}},
		{"/api/tasks?limit=1&offset=1", []string{"ship"}},
		{"/api/tasks?offset=2", []string{"review"}},
		{"/api/tasks?sort=due", []string{"ship", "review", "write docs"}},
		{"/api/tasks?sort=due&limit=2", []string{"ship", "review"}},
		{"/api/tasks?q=nothing", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, names(t, tt.path))
		})
	}
}

func TestListQueryRejectsBadParams(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/tasks?status=someday",
		"/api/tasks?limit=-1",
		"/api/tasks?limit=ten",
		"/api/tasks?offset=-3",
		"/api/tasks?sort=name",
	} {
		w := ts.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), "error", path)
	}
}

func TestCreate(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/tasks", map[string]string{
		"name":        "ship release",
		"description": "tag and publish",
		"assignDate":  "2024-03-01",
		"lastDate":    "2024-03-05",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.StatusNotCompleted, created.Status)
	assert.Equal(t, "2024-03-01T00:00:00.000Z", created.AssignDate)
	assert.Equal(t, "2024-03-05T00:00:00.000Z", created.LastDate)
	assert.Equal(t, "2024-03-01", model.DateInputValue(created.AssignDate))
}

func TestCreateValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/tasks", map[string]string{
		"name": "only a name",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please fill in all fields.")

	w = ts.do(t, http.MethodPost, "/api/tasks", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	task := testutil.SampleTask("x")
	task.Status = "Someday"
	w = ts.do(t, http.MethodPost, "/api/tasks", task)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	counts, err := ts.store.CountTasks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts.Total)
}

func TestUpdateMergesPresentFields(t *testing.T) {
	ts := newTestServer(t)
	seeded := testutil.Seed(t, ts.store, "a")

	w := ts.do(t, http.MethodPut, "/api/tasks/"+seeded[0].ID, map[string]string{
		"status": "Completed",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, seeded[0].ID, got.ID)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, "a description", got.Description)
}

func TestUpdateIgnoresBodyID(t *testing.T) {
	ts := newTestServer(t)
	seeded := testutil.Seed(t, ts.store, "a", "b")

	w := ts.do(t, http.MethodPut, "/api/tasks/"+seeded[0].ID, map[string]string{
		"_id":  seeded[1].ID,
		"name": "renamed",
	})
	require.Equal(t, http.StatusOK, w.Code)

	other, err := ts.store.GetTaskByID(context.Background(), seeded[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "b", other.Name)
}

func TestUpdateErrors(t *testing.T) {
	ts := newTestServer(t)
	seeded := testutil.Seed(t, ts.store, "a")

	w := ts.do(t, http.MethodPut, "/api/tasks/missing", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPut, "/api/tasks/"+seeded[0].ID, map[string]string{"status": "Done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete(t *testing.T) {
	ts := newTestServer(t)
	seeded := testutil.Seed(t, ts.store, "a")

	w := ts.do(t, http.MethodDelete, "/api/tasks/"+seeded[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/tasks/"+seeded[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2024-01-01T00:00:00.000Z", normalizeDate("2024-01-01"))
	assert.Equal(t, "2024-01-01T10:30:00.000Z", normalizeDate("2024-01-01T12:30:00+02:00"))
	assert.Equal(t, "garbage", normalizeDate("garbage"))
	assert.Equal(t, "", normalizeDate(""))
}

// TestClientRoundTrip drives the HTTP client and the task service against
// a live server.
func TestClientRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	httpSrv := httptest.NewServer(ts.srv.Handler())
	defer httpSrv.Close()

	ctx := context.Background()
	svc := tasks.NewService(api.NewClient(httpSrv.URL+"/api"), nil)

	require.NoError(t, svc.Load(ctx))
	assert.Equal(t, model.Counts{}, svc.Counts())

	created, err := svc.Create(ctx, model.Task{
		Name: "write docs", Description: "README", AssignDate: "2024-01-01", LastDate: "2024-01-31",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	_, err = svc.Create(ctx, model.Task{Name: "second", Description: "x", AssignDate: "2024-01-02", LastDate: "2024-01-03"})
	require.NoError(t, err)

	toggled, err := svc.ToggleStatus(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, toggled.Status)

	require.NoError(t, svc.BeginEdit(created.ID))
	require.NoError(t, svc.ChangeField("name", "write better docs"))
	saved, err := svc.SaveEdit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "write better docs", saved.Name)
	assert.Equal(t, model.StatusCompleted, saved.Status)

	// A fresh load agrees with local state.
	local := svc.Store().Tasks()
	require.NoError(t, svc.Load(ctx))
	assert.Equal(t, local, svc.Store().Tasks())
	assert.Equal(t, model.Counts{Total: 2, Completed: 1, Incomplete: 1}, svc.Counts())

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, 1, svc.Counts().Total)

	err = svc.Delete(ctx, "not-loaded")
	assert.ErrorIs(t, err, tasks.ErrNotFound)

	err = api.NewClient(httpSrv.URL+"/api").DeleteTask(ctx, created.ID)
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.NotFound())
}
