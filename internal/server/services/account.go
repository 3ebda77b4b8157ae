// Package services contains server-side business logic. AccountService owns
// the account lifecycle: create, login, password change, deletion, and
// session token issuance.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/aimauth/internal/common"
	"github.com/dmitrijs2005/aimauth/internal/dbx"
	"github.com/dmitrijs2005/aimauth/internal/server/auth"
	"github.com/dmitrijs2005/aimauth/internal/server/models"
	"github.com/dmitrijs2005/aimauth/internal/server/repositories/repomanager"
)

// DefaultRole is assigned to accounts created without an explicit role.
const DefaultRole = "user"

// PasswordHasher is satisfied by *auth.PasswordHasher.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// TokenIssuer is satisfied by *auth.TokenIssuer.
type TokenIssuer interface {
	Issue(subjectID int64) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// CreateAccountInput carries the fields of a new account. Password is plaintext
// and is only ever passed to the hasher.
type CreateAccountInput struct {
	Role      string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AccountService is immutable after construction and safe for concurrent use.
// Each mutating operation runs in exactly one database transaction.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	issuer      TokenIssuer
	defaultRole string
	now         func() time.Time
}

// Option customizes an AccountService.
type Option func(*AccountService)

// WithClock overrides the time source used for last-login dates.
func WithClock(now func() time.Time) Option {
	return func(s *AccountService) { s.now = now }
}

// WithDefaultRole sets the role stored when CreateAccountInput.Role is empty.
func WithDefaultRole(role string) Option {
	return func(s *AccountService) { s.defaultRole = role }
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher, i TokenIssuer, opts ...Option) *AccountService {
	s := &AccountService{
		db:          db,
		repomanager: m,
		hasher:      h,
		issuer:      i,
		defaultRole: DefaultRole,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount stores a new account with a bcrypt hash of the password and
// today's date as last login. Returns common.ErrEmailAlreadyExists when the
// email is taken, including when a concurrent request wins the insert.
func (s *AccountService) CreateAccount(ctx context.Context, in CreateAccountInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = s.defaultRole
	}

	user := &models.User{
		Role:      role,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		LastLogin: s.today(),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		exists, err := repo.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return storageError("check email", err)
		}
		if exists {
			return common.ErrEmailAlreadyExists
		}

		hash, err := s.hash(in.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash

		if _, err := repo.Insert(ctx, user); err != nil {
			if errors.Is(err, common.ErrEmailAlreadyExists) {
				return err
			}
			return storageError("insert user", err)
		}
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	return user, nil
}

// Login verifies the credentials and records today as the last login date.
// A wrong password leaves the record untouched.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := s.authorize(ctx, repo.FindByEmail, email, password)
		if err != nil {
			return err
		}

		today := s.today()
		if err := repo.UpdateLastLogin(ctx, email, today); err != nil {
			return storageError("update last login", err)
		}
		u.LastLogin = today
		user = u
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	return user, nil
}

// ChangePassword replaces the stored hash. The checks run in order: unknown
// email, unchanged password, wrong old password.
func (s *AccountService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := s.lookup(ctx, repo.FindByEmail, email)
		if err != nil {
			return err
		}

		if oldPassword == newPassword {
			return common.ErrNoOpPasswordChange
		}

		if err := s.verify(oldPassword, u.PasswordHash); err != nil {
			return err
		}

		hash, err := s.hash(newPassword)
		if err != nil {
			return err
		}

		if err := repo.UpdatePasswordHash(ctx, email, hash); err != nil {
			return storageError("update password", err)
		}
		return nil
	})
	return txError(err)
}

// DeleteAccount removes the account after verifying the password. Irreversible.
func (s *AccountService) DeleteAccount(ctx context.Context, email, password string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if _, err := s.authorize(ctx, repo.FindByEmail, email, password); err != nil {
			return err
		}

		if err := repo.Delete(ctx, email); err != nil {
			return storageError("delete user", err)
		}
		return nil
	})
	return txError(err)
}

// IssueToken resolves email to its stored id and signs a session token for it.
// An unknown email is common.ErrSubjectNotFound.
func (s *AccountService) IssueToken(ctx context.Context, email string) (string, error) {
	u, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrSubjectNotFound
		}
		return "", storageError("resolve subject", err)
	}

	return s.issuer.Issue(u.ID)
}

// Authenticate verifies a session token and loads its subject.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, err
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrSubjectNotFound
		}
		return nil, storageError("load subject", err)
	}
	return u, nil
}

// --- helpers below ---

type findFunc func(ctx context.Context, email string) (*models.User, error)

func (s *AccountService) lookup(ctx context.Context, find findFunc, email string) (*models.User, error) {
	u, err := find(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrEmailNotFound
		}
		return nil, storageError("find user", err)
	}
	return u, nil
}

func (s *AccountService) authorize(ctx context.Context, find findFunc, email, password string) (*models.User, error) {
	u, err := s.lookup(ctx, find, email)
	if err != nil {
		return nil, err
	}
	if err := s.verify(password, u.PasswordHash); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AccountService) verify(password, hash string) error {
	ok, err := s.hasher.Verify(password, hash)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if !ok {
		return common.ErrIncorrectPassword
	}
	return nil
}

func (s *AccountService) hash(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrPasswordTooLong) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return hash, nil
}

func (s *AccountService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStorageUnavailable, err)
}

// passthrough lists errors that already carry their final classification.
var passthrough = []error{
	common.ErrEmailAlreadyExists,
	common.ErrEmailNotFound,
	common.ErrIncorrectPassword,
	common.ErrNoOpPasswordChange,
	common.ErrPasswordTooLong,
	common.ErrStorageUnavailable,
	common.ErrorInternal,
}

// txError classifies what dbx.WithTx returned. Begin and commit failures come
// back raw and are reported as storage errors.
func txError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range passthrough {
		if errors.Is(err, known) {
			return err
		}
	}
	return storageError("transaction", err)
}
