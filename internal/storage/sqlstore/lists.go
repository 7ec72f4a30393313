package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"planner/internal/models"
)

// ListsForUser returns every list owned by the user ordered by id.
func (s *Store) ListsForUser(ctx context.Context, userID int64) ([]models.List, error) {
	rows, err := s.query(ctx, s.db, `SELECT id, type, user_id FROM lists WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var lists []models.List
	for rows.Next() {
		var l models.List
		if err := rows.Scan(&l.ID, &l.Type, &l.UserID); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// ListIDByType resolves a list name to its id for the user.
func (s *Store) ListIDByType(ctx context.Context, userID int64, listType string) (int64, error) {
	return s.listIDByType(ctx, s.db, userID, listType)
}

func (s *Store) listIDByType(ctx context.Context, q querier, userID int64, listType string) (int64, error) {
	var id int64
	err := s.queryRow(ctx, q, `SELECT id FROM lists WHERE user_id = ? AND type = ?`, userID, listType).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("list %q: %w", listType, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get list: %w", err)
	}
	return id, nil
}

// takenPaths are top-level routes a list name would be shadowed by.
var takenPaths = map[string]bool{
	"dashboard":    true,
	"logout":       true,
	"login":        true,
	"signup":       true,
	"login-signup": true,
	"api":          true,
	"tasks":        true,
	"add-tasks":    true,
	"delete-task":  true,
	"newlist":      true,
	"delete":       true,
}

// CreateList adds a named list for the user. Names are unique per user.
func (s *Store) CreateList(ctx context.Context, userID int64, listType string) (models.List, error) {
	listType = strings.TrimSpace(listType)
	if listType == "" {
		return models.List{}, fmt.Errorf("list name must not be empty: %w", ErrInvalid)
	}
	if strings.Contains(listType, "/") || takenPaths[listType] {
		return models.List{}, fmt.Errorf("list name %q is not addressable: %w", listType, ErrInvalid)
	}

	l := models.List{Type: listType, UserID: userID}
	err := s.queryRow(ctx, s.db, `INSERT INTO lists(type, user_id) VALUES(?, ?) RETURNING id`, listType, userID).Scan(&l.ID)
	if err != nil {
		return models.List{}, classify("insert list", err)
	}
	return l, nil
}

// DeleteList removes a user-defined list together with its tasks. Ids that
// do not belong to the user are ignored.
func (s *Store) DeleteList(ctx context.Context, userID, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var listType string
		err := s.queryRow(ctx, tx, `SELECT type FROM lists WHERE id = ? AND user_id = ?`+s.forUpdate(), id, userID).Scan(&listType)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get list: %w", err)
		}
		if models.IsReservedList(listType) {
			return fmt.Errorf("list %q: %w", listType, ErrReservedList)
		}

		if _, err := s.exec(ctx, tx, `DELETE FROM lists WHERE id = ? AND user_id = ?`, id, userID); err != nil {
			return fmt.Errorf("delete list: %w", err)
		}
		return nil
	})
}
