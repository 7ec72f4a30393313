package server

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"planner/internal/storage/sqlstore"
)

type listRequest struct {
	AddList string `form:"addlist" json:"addlist" binding:"required"`
}

// handleCreateList adds a user-defined list to the sidebar.
func (s *Server) handleCreateList(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondText(c, fmt.Errorf("%w: %v", errBadRequest, err), "List name is required")
		return
	}

	list, err := s.store.CreateList(c.Request.Context(), currentUser(c).ID, req.AddList)
	if err != nil {
		msg := "Invalid list name"
		if errors.Is(err, sqlstore.ErrConflict) {
			msg = "List already exists"
		}
		s.respondText(c, err, msg)
		return
	}
	s.logger.Info("list created", "id", list.ID, "type", list.Type)
	redirect(c, "/")
}

// handleDeleteList removes a user-defined list and its tasks.
func (s *Server) handleDeleteList(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondText(c, fmt.Errorf("%w: %v", errBadRequest, err), "id is required")
		return
	}
	id, err := parseID(req.ID.String())
	if err != nil {
		s.respondText(c, fmt.Errorf("%w: %v", errBadRequest, err), "Invalid id")
		return
	}

	if err := s.store.DeleteList(c.Request.Context(), currentUser(c).ID, id); err != nil {
		s.respondText(c, err, "Reserved lists cannot be deleted")
		return
	}
	s.logger.Info("list deleted", "id", id)
	redirect(c, "/")
}
