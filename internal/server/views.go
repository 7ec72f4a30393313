package server

import (
	"planner/internal/calendar"
	"planner/internal/models"
)

// IndexView is the dashboard: calendar month, user lists and calendar tasks.
type IndexView struct {
	Username      string                `json:"username"`
	CurrentDate   string                `json:"curr_date"`
	Month         int                   `json:"month"`
	Year          int                   `json:"year"`
	MonthName     string                `json:"month_name"`
	Months        []string              `json:"months"`
	Calendar      []calendar.Day        `json:"calendar"`
	Prev          MonthLink             `json:"prev"`
	Next          MonthLink             `json:"next"`
	Lists         []models.List         `json:"lists"`
	CalendarTasks []models.CalendarTask `json:"calendar_tasks"`
	Dates         []string              `json:"dates"`
}

// MonthLink points at a neighbouring month of the calendar.
type MonthLink struct {
	Month int    `json:"month"`
	Year  int    `json:"year"`
	URL   string `json:"url"`
}

// ListView renders one list; Index is the task's position in the list.
type ListView struct {
	ListType string     `json:"list_type"`
	Tasks    []TaskItem `json:"items"`
}

// TaskItem is a task with its positional index.
type TaskItem struct {
	Index int    `json:"index"`
	ID    int64  `json:"id"`
	Text  string `json:"task"`
}

// AuthView describes the login/signup forms.
type AuthView struct {
	LoginAction  string `json:"login_action"`
	SignupAction string `json:"signup_action"`
}
