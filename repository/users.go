package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/osnetwork/go-auth"
)

// Users is the bun backed IdentityStore
type Users struct {
	db bun.IDB
}

var _ auth.IdentityStore = (*Users)(nil)

// NewUsers returns a store bound to db. db may be a *bun.DB or a bun.Tx.
func NewUsers(db bun.IDB) *Users {
	return &Users{db: db}
}

// WithTx returns a store that runs every statement inside tx
func (r *Users) WithTx(tx bun.Tx) *Users {
	return &Users{db: tx}
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	user := new(auth.User)
	err := r.db.NewSelect().
		Model(user).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "find user by email")
	}
	return user, nil
}

func (r *Users) FindByIDAndRole(ctx context.Context, id int64, role auth.Role) (*auth.User, error) {
	user := new(auth.User)
	err := r.db.NewSelect().
		Model(user).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.role = ?", role).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "find user by id and role")
	}
	return user, nil
}

func (r *Users) Insert(ctx context.Context, user *auth.User) (int64, error) {
	if user == nil {
		return 0, errors.New("user is required", errors.CategoryBadInput)
	}

	res, err := r.db.NewInsert().
		Model(user).
		Returning("id").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, auth.ErrDuplicateEmail
		}
		return 0, errors.Wrap(err, errors.CategoryInternal, "insert user")
	}

	if user.ID == 0 && res != nil {
		if id, err := res.LastInsertId(); err == nil {
			user.ID = id
		}
	}

	return user.ID, nil
}

func (r *Users) UpdateProfile(ctx context.Context, id int64, role auth.Role, profile auth.Profile) error {
	res, err := r.db.NewUpdate().
		Model((*auth.User)(nil)).
		Set("name = ?", profile.Name).
		Set("email = ?", profile.Email).
		Set("phone = ?", nullString(profile.Phone)).
		Set("city = ?", nullString(profile.City)).
		Set("age = ?", profile.Age).
		Where("id = ?", id).
		Where("role = ?", role).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.ErrDuplicateEmail
		}
		return errors.Wrap(err, errors.CategoryInternal, "update user profile")
	}
	return expectRow(res)
}

func (r *Users) UpdateSecret(ctx context.Context, id int64, role auth.Role, passwordHash string) error {
	res, err := r.db.NewUpdate().
		Model((*auth.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Where("id = ?", id).
		Where("role = ?", role).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "update user password")
	}
	return expectRow(res)
}

func (r *Users) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*auth.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "delete user")
	}
	return expectRow(res)
}

func (r *Users) List(ctx context.Context) ([]*auth.User, error) {
	users := make([]*auth.User, 0)
	err := r.db.NewSelect().
		Model(&users).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "list users")
	}
	return users, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return auth.ErrIdentityNotFound
	}
	return errors.Wrap(err, errors.CategoryInternal, op)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "rows affected")
	}
	if n == 0 {
		return auth.ErrIdentityNotFound
	}
	return nil
}

// isUniqueViolation matches the sqlite driver message, both cgo and pure Go
// drivers report the constraint the same way.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
