package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"planner/internal/calendar"
	"planner/internal/models"
)

type taskDateRequest struct {
	TaskDate string `form:"taskDate" json:"taskDate" binding:"required"`
}

type addCalendarTaskRequest struct {
	Task string `form:"task" json:"task" binding:"required"`
	Date string `form:"date" json:"date" binding:"required"`
}

// idRequest accepts the id as a JSON number, a JSON string or a form value.
type idRequest struct {
	ID json.Number `form:"id" json:"id" binding:"required"`
}

// handleIndex builds the dashboard for the requested month.
func (s *Server) handleIndex(c *gin.Context) {
	user := currentUser(c)
	now := s.now()

	month, err := queryInt(c, "month", int(now.Month())-1)
	if err != nil {
		s.respondText(c, err, "Invalid month")
		return
	}
	year, err := queryInt(c, "year", now.Year())
	if err != nil {
		s.respondText(c, err, "Invalid year")
		return
	}

	ctx := c.Request.Context()
	lists, err := s.store.ListsForUser(ctx, user.ID)
	if err != nil {
		s.respondText(c, err, "Error fetching lists")
		return
	}
	calendarTasks, err := s.store.CalendarTasksForUser(ctx, user.ID)
	if err != nil {
		s.respondText(c, err, "Error fetching calendar tasks")
		return
	}

	custom := []models.List{}
	for _, l := range lists {
		if !models.IsReservedList(l.Type) {
			custom = append(custom, l)
		}
	}
	dates := make([]string, 0, len(calendarTasks))
	for _, t := range calendarTasks {
		dates = append(dates, t.DisplayDate)
	}

	shownMonth, _ := calendar.Navigate(month, year)
	c.JSON(http.StatusOK, IndexView{
		Username:      user.Username,
		CurrentDate:   now.Format("Monday, January 2, 2006"),
		Month:         month,
		Year:          year,
		MonthName:     calendar.Months[shownMonth],
		Months:        calendar.Months,
		Calendar:      calendar.Generate(month, year, now),
		Prev:          monthLink(month-1, year),
		Next:          monthLink(month+1, year),
		Lists:         custom,
		CalendarTasks: calendarTasks,
		Dates:         dates,
	})
}

func monthLink(month, year int) MonthLink {
	m, y := calendar.Navigate(month, year)
	return MonthLink{Month: m, Year: y, URL: fmt.Sprintf("/?month=%d&year=%d", m, y)}
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errBadRequest, key, raw)
	}
	return v, nil
}

// handleCalendarTasksByDate returns the calendar tasks of one day.
func (s *Server) handleCalendarTasksByDate(c *gin.Context) {
	var req taskDateRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err), "taskDate is required")
		return
	}

	day, err := calendar.ParseTaskDate(req.TaskDate)
	if err != nil {
		s.respondError(c, err, "Invalid date")
		return
	}
	s.logger.Debug("calendar lookup", "task_date", req.TaskDate, "date", calendar.CanonicalDate(day))

	tasks, err := s.store.CalendarTasksByDate(c.Request.Context(), currentUser(c).ID, day)
	if err != nil {
		s.respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// handleAddCalendarTask attaches a task to a date.
func (s *Server) handleAddCalendarTask(c *gin.Context) {
	var req addCalendarTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondText(c, fmt.Errorf("%w: %v", errBadRequest, err), "Task and date are required")
		return
	}

	day, err := calendar.ParseAny(req.Date)
	if err != nil {
		s.respondText(c, err, "Invalid date")
		return
	}

	task, err := s.store.AddCalendarTask(c.Request.Context(), currentUser(c).ID, day, req.Task)
	if err != nil {
		s.respondText(c, err, "Error saving task.")
		return
	}
	s.logger.Info("calendar task added", "id", task.ID, "date", task.Date)
	redirect(c, "/")
}

// handleDeleteCalendarTask removes a calendar task and confirms in JSON.
func (s *Server) handleDeleteCalendarTask(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err), "id is required")
		return
	}
	id, err := parseID(req.ID.String())
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err), "Invalid id")
		return
	}

	if err := s.store.DeleteCalendarTask(c.Request.Context(), currentUser(c).ID, id); err != nil {
		s.respondError(c, err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Task with ID %d deleted successfully!", id)})
}
