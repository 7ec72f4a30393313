package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"planner/internal/models"
)

// CreateUser inserts a new account and seeds its reserved lists in the same
// transaction. A duplicate email yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" || passwordHash == "" {
		return models.User{}, fmt.Errorf("create user: %w", ErrInvalid)
	}

	u := models.User{Username: username, Email: email, PasswordHash: passwordHash}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := s.queryRow(ctx, tx, `INSERT INTO users(username, email, password) VALUES(?, ?, ?) RETURNING id`,
			username, email, passwordHash).Scan(&u.ID)
		if err != nil {
			return classify("insert user", err)
		}
		return s.seedReservedLists(ctx, tx, u.ID)
	})
	if err != nil {
		return models.User{}, err
	}

	s.logger.Info("user created", "user_id", u.ID)
	return u, nil
}

// UserByEmail looks up an account for login.
func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(s.queryRow(ctx, s.db, `SELECT id, username, email, password FROM users WHERE email = ?`, normalizeEmail(email)))
}

// UserByID fetches the account behind an authenticated session.
func (s *Store) UserByID(ctx context.Context, id int64) (models.User, error) {
	return scanUser(s.queryRow(ctx, s.db, `SELECT id, username, email, password FROM users WHERE id = ?`, id))
}

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// seedReservedLists makes sure every reserved list exists for the user.
func (s *Store) seedReservedLists(ctx context.Context, q querier, userID int64) error {
	for _, listType := range models.ReservedListTypes {
		var exists int
		err := s.queryRow(ctx, q, `SELECT COUNT(*) FROM lists WHERE user_id = ? AND type = ?`, userID, listType).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check list %s: %w", listType, err)
		}
		if exists > 0 {
			continue
		}
		if _, err := s.exec(ctx, q, `INSERT INTO lists(type, user_id) VALUES(?, ?)`, listType, userID); err != nil {
			return classify("seed list "+listType, err)
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
