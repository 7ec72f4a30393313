package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"planner/internal/calendar"
	"planner/internal/models"
)

// CalendarTasksForUser returns all calendar tasks ordered by date.
func (s *Store) CalendarTasksForUser(ctx context.Context, userID int64) ([]models.CalendarTask, error) {
	return s.calendarTasks(ctx, `SELECT id, date, task, user_id FROM calendar_tasks WHERE user_id = ? ORDER BY date ASC, id ASC`, userID)
}

// CalendarTasksByDate returns the tasks attached to exactly that day.
func (s *Store) CalendarTasksByDate(ctx context.Context, userID int64, date time.Time) ([]models.CalendarTask, error) {
	return s.calendarTasks(ctx, `SELECT id, date, task, user_id FROM calendar_tasks WHERE user_id = ? AND date = ? ORDER BY id ASC`,
		userID, calendar.CanonicalDate(date))
}

func (s *Store) calendarTasks(ctx context.Context, query string, args ...any) ([]models.CalendarTask, error) {
	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list calendar tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.CalendarTask{}
	for rows.Next() {
		var t models.CalendarTask
		if err := rows.Scan(&t.ID, &t.Date, &t.Text, &t.UserID); err != nil {
			return nil, fmt.Errorf("scan calendar task: %w", err)
		}
		t.DisplayDate = calendar.DisplayFromCanonical(t.Date)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// AddCalendarTask stores a task on a day and returns the created row.
func (s *Store) AddCalendarTask(ctx context.Context, userID int64, date time.Time, text string) (models.CalendarTask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.CalendarTask{}, fmt.Errorf("task text must not be empty: %w", ErrInvalid)
	}

	t := models.CalendarTask{
		Date:        calendar.CanonicalDate(date),
		DisplayDate: calendar.DisplayDate(date),
		Text:        text,
		UserID:      userID,
	}
	err := s.queryRow(ctx, s.db, `INSERT INTO calendar_tasks(date, task, user_id) VALUES(?, ?, ?) RETURNING id`,
		t.Date, t.Text, userID).Scan(&t.ID)
	if err != nil {
		return models.CalendarTask{}, fmt.Errorf("insert calendar task: %w", err)
	}
	return t, nil
}

// DeleteCalendarTask removes a calendar task owned by the user.
func (s *Store) DeleteCalendarTask(ctx context.Context, userID, id int64) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM calendar_tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete calendar task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("calendar task %d: %w", id, ErrNotFound)
	}
	return nil
}
