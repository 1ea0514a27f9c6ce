package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

func TestListTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"_id":"1","name":"A","description":"x","status":"Completed","assignDate":"2024-01-01T00:00:00.000Z","lastDate":"2024-01-10T00:00:00.000Z","__v":0}]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/", WithToken("secret"))
	tasks, err := c.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.Task{
		ID: "1", Name: "A", Description: "x", Status: model.StatusCompleted,
		AssignDate: "2024-01-01T00:00:00.000Z", LastDate: "2024-01-10T00:00:00.000Z",
	}, tasks[0])
}

func TestListTasksEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `null`)
	}))
	defer srv.Close()

	tasks, err := NewClient(srv.URL).ListTasks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestCreateTaskSendsNoIdentifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var raw map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, hasID := raw["_id"]
		assert.False(t, hasID)
		assert.Equal(t, "Not Completed", raw["status"])

		raw["_id"] = "new-id"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(raw)
	}))
	defer srv.Close()

	created, err := NewClient(srv.URL).CreateTask(context.Background(), model.Task{
		ID: "ignored", Name: "A", Description: "x", Status: model.StatusNotCompleted,
		AssignDate: "2024-01-01", LastDate: "2024-01-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", created.ID)
	assert.Equal(t, "A", created.Name)
}

func TestUpdateTaskEscapesIdentifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tasks/a%2Fb", r.URL.EscapedPath())
		io.WriteString(w, `{"_id":"a/b","name":"B"}`)
	}))
	defer srv.Close()

	updated, err := NewClient(srv.URL).UpdateTask(context.Background(), "a/b", model.Task{Name: "B"})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
}

func TestDeleteTask(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/tasks/42", r.URL.Path)
		io.WriteString(w, `{"message":"Task deleted"}`)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL).DeleteTask(context.Background(), "42"))
	assert.True(t, called)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such task", http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).DeleteTask(context.Background(), "missing")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.NotFound())
	assert.Equal(t, http.MethodDelete, se.Method)
	assert.Contains(t, se.Error(), "no such task")
}

func TestNoRetryOnServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListTasks(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "Service Unavailable")
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{not json`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListTasks(context.Background())
	assert.ErrorContains(t, err, "unmarshaling response")
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, WithTimeout(50*time.Millisecond)).ListTasks(context.Background())
	assert.Error(t, err)
}
