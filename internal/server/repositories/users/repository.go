// Package users stores account records. Implementations are bound to a
// dbx.DBTX so the same code runs on a pool or inside a transaction.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/aimauth/internal/server/models"
)

// Repository is the user store.
//
// Lookups return common.ErrorNotFound when no row matches. Insert returns
// common.ErrEmailAlreadyExists when the unique email index rejects the row.
// Update and Delete return common.ErrorNotFound when nothing was affected.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Insert(ctx context.Context, user *models.User) (int64, error)
	UpdatePasswordHash(ctx context.Context, email, hash string) error
	UpdateLastLogin(ctx context.Context, email string, day time.Time) error
	Delete(ctx context.Context, email string) error
}

// dateLayout is the on-disk form of last_login where the driver has no DATE type.
const dateLayout = "2006-01-02"

// truncateDay reduces t to its calendar day in t's location.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type rowScanner interface {
	Scan(dest ...any) error
}
