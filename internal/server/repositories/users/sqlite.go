package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/aimauth/internal/common"
	"github.com/dmitrijs2005/aimauth/internal/dbx"
	"github.com/dmitrijs2005/aimauth/internal/server/models"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLiteRepository is the single-node user store. last_login is kept as
// YYYY-MM-DD text.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sqliteSelectUser = `SELECT id, role, first_name, last_name, email, password_hash, last_login
		 FROM users`

// FindByEmail returns the most recently inserted row for email.
func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := sqliteSelectUser + `
		 WHERE email = ?
		 ORDER BY id DESC
		 LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := sqliteSelectUser + `
		 WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, user *models.User) (int64, error) {
	query :=
		`INSERT INTO users (role, first_name, last_name, email, password_hash, last_login)
		 VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		user.Role, user.FirstName, user.LastName, user.Email, user.PasswordHash, dateText(user.LastLogin))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, common.ErrEmailAlreadyExists
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	user.ID = id
	return id, nil
}

func (r *SQLiteRepository) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	return execAffecting(ctx, r.db, `UPDATE users SET password_hash = ? WHERE email = ?`, hash, email)
}

func (r *SQLiteRepository) UpdateLastLogin(ctx context.Context, email string, day time.Time) error {
	return execAffecting(ctx, r.db, `UPDATE users SET last_login = ? WHERE email = ?`, dateText(day), email)
}

func (r *SQLiteRepository) Delete(ctx context.Context, email string) error {
	return execAffecting(ctx, r.db, `DELETE FROM users WHERE email = ?`, email)
}

func (r *SQLiteRepository) scanOne(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullString

	err := row.Scan(&user.ID, &user.Role, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lastLogin.Valid && lastLogin.String != "" {
		day, err := time.Parse(dateLayout, lastLogin.String)
		if err != nil {
			return nil, fmt.Errorf("db error: bad last_login %q: %w", lastLogin.String, err)
		}
		user.LastLogin = day
	}
	return user, nil
}

func dateText(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
