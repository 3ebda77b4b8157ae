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
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const pgSelectUser = `SELECT id, role, first_name, last_name, email, password_hash, last_login
		 FROM users`

// FindByEmail returns the most recently inserted row for email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := pgSelectUser + `
		 WHERE email = $1
		 ORDER BY id DESC
		 LIMIT 1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := pgSelectUser + `
		 WHERE id = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, user *models.User) (int64, error) {
	query :=
		`INSERT INTO users (role, first_name, last_name, email, password_hash, last_login)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		user.Role, user.FirstName, user.LastName, user.Email, user.PasswordHash, nullDate(user.LastLogin)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, common.ErrEmailAlreadyExists
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	user.ID = id
	return id, nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE email = $2`
	return execAffecting(ctx, r.db, query, hash, email)
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, email string, day time.Time) error {
	query := `UPDATE users SET last_login = $1 WHERE email = $2`
	return execAffecting(ctx, r.db, query, truncateDay(day), email)
}

func (r *PostgresRepository) Delete(ctx context.Context, email string) error {
	query := `DELETE FROM users WHERE email = $1`
	return execAffecting(ctx, r.db, query, email)
}

func (r *PostgresRepository) scanOne(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime

	err := row.Scan(&user.ID, &user.Role, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lastLogin.Valid {
		user.LastLogin = lastLogin.Time
	}
	return user, nil
}

func nullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: truncateDay(t), Valid: true}
}

// execAffecting runs a write and maps "no rows affected" to common.ErrorNotFound.
func execAffecting(ctx context.Context, db dbx.DBTX, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
