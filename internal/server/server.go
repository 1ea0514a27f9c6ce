// Package server is a development backend for the tasks REST resource.
// It serves the same contract the client speaks, backed by SQLite.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// isoLayout matches the date-time text a document store emits.
const isoLayout = "2006-01-02T15:04:05.000Z"

// Server routes the tasks resource onto a store.
type Server struct {
	store  store.Store
	router *gin.Engine
	logger *log.Logger
}

// NewServer creates a server. A nil logger discards request errors.
func NewServer(st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		store:  st,
		router: router,
		logger: logger,
	}

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleList)
		api.POST("/tasks", s.handleCreate)
		api.PUT("/tasks/:id", s.handleUpdate)
		api.DELETE("/tasks/:id", s.handleDelete)
	}

	return s
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr until ctx is cancelled, then shuts down.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleList serves GET /tasks. Optional query parameters: status
// (all, completed, incomplete), q (substring of name or description),
// limit and offset, sort=due. X-Total-Count carries the unfiltered total.
func (s *Server) handleList(c *gin.Context) {
	filter, err := parseListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		s.internalError(c, "listing tasks", err)
		return
	}
	counts, err := s.store.CountTasks(ctx)
	if err != nil {
		s.internalError(c, "counting tasks", err)
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(counts.Total))
	c.JSON(http.StatusOK, tasks)
}

func parseListQuery(c *gin.Context) (store.TaskFilter, error) {
	var filter store.TaskFilter

	f, err := model.ParseFilter(c.Query("status"))
	if err != nil {
		return filter, err
	}
	switch f {
	case model.FilterCompleted:
		st := model.StatusCompleted
		filter.Status = &st
	case model.FilterNotCompleted:
		st := model.StatusNotCompleted
		filter.Status = &st
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filter.Query = &q
	}

	if filter.Limit, err = nonNegative(c, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = nonNegative(c, "offset"); err != nil {
		return filter, err
	}

	switch sort := c.Query("sort"); sort {
	case "":
	case "due":
		filter.SortByDue = true
	default:
		return filter, fmt.Errorf("unknown sort %q (want due)", sort)
	}
	return filter, nil
}

func nonNegative(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

func (s *Server) handleCreate(c *gin.Context) {
	var task model.Task
	if err := c.BindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if task.Status != "" && !task.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid status %q", task.Status)})
		return
	}
	task.AssignDate = normalizeDate(task.AssignDate)
	task.LastDate = normalizeDate(task.LastDate)

	created, err := s.store.CreateTask(c.Request.Context(), task)
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "missing": verr.Missing})
		return
	}
	if err != nil {
		s.internalError(c, "creating task", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdate(c *gin.Context) {
	id := c.Param("id")

	var patch model.TaskPatch
	if err := c.BindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.Status != nil && !patch.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid status %q", *patch.Status)})
		return
	}

	ctx := c.Request.Context()
	current, err := s.store.GetTaskByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		s.internalError(c, "loading task", err)
		return
	}

	// The identifier always comes from the path.
	patch.ID = nil
	merged := patch.Apply(*current)
	merged.AssignDate = normalizeDate(merged.AssignDate)
	merged.LastDate = normalizeDate(merged.LastDate)

	updated, err := s.store.UpdateTask(ctx, merged)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		s.internalError(c, "updating task", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDelete(c *gin.Context) {
	err := s.store.DeleteTask(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		s.internalError(c, "deleting task", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) internalError(c *gin.Context, action string, err error) {
	s.logger.Printf("error %s: %v", action, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// normalizeDate stores parseable dates as UTC ISO date-times and leaves
// anything else as sent.
func normalizeDate(s string) string {
	t, ok := model.ParseDate(s)
	if !ok {
		return s
	}
	return t.UTC().Format(isoLayout)
}
