package models

// Reserved list types seeded for every user.
const (
	ListPersonal  = "personal"
	ListWork      = "work"
	ListCompleted = "completed"
)

// ReservedListTypes enumerates the lists that always exist for a user.
var ReservedListTypes = []string{ListPersonal, ListWork, ListCompleted}

// IsReservedList reports whether the list type is one of the seeded lists.
func IsReservedList(listType string) bool {
	for _, t := range ReservedListTypes {
		if t == listType {
			return true
		}
	}
	return false
}

// User is an account owning lists, tasks and calendar tasks.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// List is a named bucket of tasks owned by a single user.
type List struct {
	ID     int64  `json:"id"`
	Type   string `json:"type"`
	UserID int64  `json:"user_id"`
}

// Task represents a single to-do item inside a list.
type Task struct {
	ID     int64  `json:"id"`
	Text   string `json:"task"`
	ListID int64  `json:"list_id"`
	UserID int64  `json:"user_id"`
}

// CalendarTask is a task annotation bound to a calendar day.
// Date holds the canonical YYYY-MM-DD key, DisplayDate the DD-MM-YYYY form.
type CalendarTask struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	DisplayDate string `json:"display_date"`
	Text        string `json:"task"`
	UserID      int64  `json:"user_id"`
}
