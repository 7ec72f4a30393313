package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"planner/internal/models"
)

const taskColumns = `id, task, list_id, user_id`

// TasksForList returns the list's tasks in positional order (id ascending).
func (s *Store) TasksForList(ctx context.Context, userID, listID int64) ([]models.Task, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+taskColumns+` FROM tasks WHERE list_id = ? AND user_id = ? ORDER BY id ASC`, listID, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Text, &t.ListID, &t.UserID); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTask appends a task to a list owned by the user.
func (s *Store) CreateTask(ctx context.Context, userID, listID int64, text string) (models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, fmt.Errorf("task text must not be empty: %w", ErrInvalid)
	}

	t := models.Task{Text: text, ListID: listID, UserID: userID}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var owned int
		err := s.queryRow(ctx, tx, `SELECT COUNT(*) FROM lists WHERE id = ? AND user_id = ?`, listID, userID).Scan(&owned)
		if err != nil {
			return fmt.Errorf("check list: %w", err)
		}
		if owned == 0 {
			return fmt.Errorf("list %d: %w", listID, ErrNotFound)
		}

		err = s.queryRow(ctx, tx, `INSERT INTO tasks(task, list_id, user_id) VALUES(?, ?, ?) RETURNING id`, text, listID, userID).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// TaskAtIndex returns the index-th task of the list (0-based, id ascending).
func (s *Store) TaskAtIndex(ctx context.Context, userID, listID int64, index int) (models.Task, error) {
	return s.taskAtIndex(ctx, s.db, userID, listID, index, "")
}

func (s *Store) taskAtIndex(ctx context.Context, q querier, userID, listID int64, index int, lock string) (models.Task, error) {
	if index < 0 {
		return models.Task{}, fmt.Errorf("task index %d: %w", index, ErrNotFound)
	}

	var t models.Task
	err := s.queryRow(ctx, q, `SELECT `+taskColumns+` FROM tasks WHERE list_id = ? AND user_id = ? ORDER BY id ASC LIMIT 1 OFFSET ?`+lock,
		listID, userID, index).Scan(&t.ID, &t.Text, &t.ListID, &t.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task index %d: %w", index, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// DeleteTaskAtIndex removes the index-th task of the list. Resolution and
// deletion happen in one transaction.
func (s *Store) DeleteTaskAtIndex(ctx context.Context, userID, listID int64, index int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		t, err := s.taskAtIndex(ctx, tx, userID, listID, index, s.forUpdate())
		if err != nil {
			return err
		}
		return s.deleteTask(ctx, tx, userID, listID, t.ID)
	})
}

// DeleteTask removes a task by id from the given list.
func (s *Store) DeleteTask(ctx context.Context, userID, listID, taskID int64) error {
	return s.deleteTask(ctx, s.db, userID, listID, taskID)
}

func (s *Store) deleteTask(ctx context.Context, q querier, userID, listID, taskID int64) error {
	res, err := s.exec(ctx, q, `DELETE FROM tasks WHERE id = ? AND list_id = ? AND user_id = ?`, taskID, listID, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}
	return nil
}

// CompleteTaskAtIndex moves the index-th task of listType into the user's
// completed list.
func (s *Store) CompleteTaskAtIndex(ctx context.Context, userID int64, listType string, index int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		listID, err := s.listIDByType(ctx, tx, userID, listType)
		if err != nil {
			return err
		}
		t, err := s.taskAtIndex(ctx, tx, userID, listID, index, s.forUpdate())
		if err != nil {
			return err
		}
		return s.moveToCompleted(ctx, tx, userID, listID, t.ID)
	})
}

// CompleteTask moves a task, addressed by id, from listType into the
// user's completed list.
func (s *Store) CompleteTask(ctx context.Context, userID int64, listType string, taskID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		listID, err := s.listIDByType(ctx, tx, userID, listType)
		if err != nil {
			return err
		}
		return s.moveToCompleted(ctx, tx, userID, listID, taskID)
	})
}

func (s *Store) moveToCompleted(ctx context.Context, q querier, userID, fromListID, taskID int64) error {
	completedID, err := s.listIDByType(ctx, q, userID, models.ListCompleted)
	if err != nil {
		return err
	}

	res, err := s.exec(ctx, q, `UPDATE tasks SET list_id = ? WHERE id = ? AND list_id = ? AND user_id = ?`,
		completedID, taskID, fromListID, userID)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}
	return nil
}
