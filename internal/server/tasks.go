package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"planner/internal/storage/sqlstore"
)

type taskRequest struct {
	Task string `form:"task" json:"task" binding:"required"`
}

// taskRefRequest addresses a task by stable id or, for older clients, by
// its position in the list. The id wins when both are sent.
type taskRefRequest struct {
	ID    json.Number `form:"id" json:"id"`
	Index json.Number `form:"index" json:"index"`
}

type taskRef struct {
	id    int64
	index int
	byID  bool
}

func (r taskRefRequest) resolve() (taskRef, error) {
	if r.ID != "" {
		id, err := parseID(r.ID.String())
		if err != nil {
			return taskRef{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return taskRef{id: id, byID: true}, nil
	}
	if r.Index != "" {
		index, err := strconv.Atoi(r.Index.String())
		if err != nil {
			return taskRef{}, fmt.Errorf("%w: invalid index %q", errBadRequest, r.Index)
		}
		return taskRef{index: index}, nil
	}
	return taskRef{}, fmt.Errorf("%w: id or index is required", errBadRequest)
}

func listPath(listType string) string {
	return "/" + url.PathEscape(listType)
}

// handleListTasks renders one list with its tasks in positional order.
func (s *Server) handleListTasks(c *gin.Context) {
	listType := c.Param("listType")
	ctx := c.Request.Context()
	userID := currentUser(c).ID

	listID, err := s.store.ListIDByType(ctx, userID, listType)
	if err != nil {
		s.respondText(c, err, "List not found")
		return
	}

	tasks, err := s.store.TasksForList(ctx, userID, listID)
	if err != nil {
		s.respondText(c, err, "Error fetching tasks")
		return
	}

	items := make([]TaskItem, 0, len(tasks))
	for i, t := range tasks {
		items = append(items, TaskItem{Index: i, ID: t.ID, Text: t.Text})
	}
	c.JSON(http.StatusOK, ListView{ListType: listType, Tasks: items})
}

// handleCreateTask appends a task to the list.
func (s *Server) handleCreateTask(c *gin.Context) {
	listType := c.Param("listType")

	var req taskRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondText(c, fmt.Errorf("%w: %v", errBadRequest, err), "Task is required")
		return
	}

	ctx := c.Request.Context()
	userID := currentUser(c).ID
	listID, err := s.store.ListIDByType(ctx, userID, listType)
	if err != nil {
		s.respondText(c, err, "List not found")
		return
	}
	if _, err := s.store.CreateTask(ctx, userID, listID, req.Task); err != nil {
		msg := "Task is required"
		if errors.Is(err, sqlstore.ErrNotFound) {
			msg = "List not found"
		}
		s.respondText(c, err, msg)
		return
	}
	redirect(c, listPath(listType))
}

// handleDeleteTask removes a task from the list.
func (s *Server) handleDeleteTask(c *gin.Context) {
	listType := c.Param("listType")

	var req taskRefRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondText(c, fmt.Errorf("%w: %v", errBadRequest, err), "Invalid request")
		return
	}
	ref, err := req.resolve()
	if err != nil {
		s.respondText(c, err, "id or index is required")
		return
	}

	ctx := c.Request.Context()
	userID := currentUser(c).ID
	listID, err := s.store.ListIDByType(ctx, userID, listType)
	if err != nil {
		s.respondText(c, err, "List not found")
		return
	}

	if ref.byID {
		err = s.store.DeleteTask(ctx, userID, listID, ref.id)
	} else {
		err = s.store.DeleteTaskAtIndex(ctx, userID, listID, ref.index)
	}
	if err != nil {
		s.respondText(c, err, "Task not found")
		return
	}
	redirect(c, listPath(listType))
}

// handleCompleteTask moves a task into the completed list.
func (s *Server) handleCompleteTask(c *gin.Context) {
	listType := c.Param("listType")

	var req taskRefRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondText(c, fmt.Errorf("%w: %v", errBadRequest, err), "Invalid request")
		return
	}
	ref, err := req.resolve()
	if err != nil {
		s.respondText(c, err, "id or index is required")
		return
	}

	ctx := c.Request.Context()
	userID := currentUser(c).ID
	if ref.byID {
		err = s.store.CompleteTask(ctx, userID, listType, ref.id)
	} else {
		err = s.store.CompleteTaskAtIndex(ctx, userID, listType, ref.index)
	}
	if err != nil {
		s.respondText(c, err, "Task not found")
		return
	}
	redirect(c, listPath(listType))
}
