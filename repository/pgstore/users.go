// Package pgstore is the PostgreSQL IdentityStore built directly on pgx.
package pgstore

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osnetwork/go-auth"
)

// poolIface is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const userColumns = `id, name, email, password_hash, role, COALESCE(phone, ''), COALESCE(city, ''), age, created_at`

const schemaSQL = `CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('user', 'player', 'coach', 'admin')),
	phone         TEXT,
	city          TEXT,
	age           INTEGER,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Open creates a connection pool for dsn
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "open postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.CategoryInternal, "ping postgres")
	}
	return pool, nil
}

// EnsureSchema creates the users table when missing
func EnsureSchema(ctx context.Context, pool poolIface) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "create users table")
	}
	return nil
}

// Users implements auth.IdentityStore on PostgreSQL
type Users struct {
	pool poolIface
}

var _ auth.IdentityStore = (*Users)(nil)

func NewUsers(pool poolIface) *Users {
	return &Users{pool: pool}
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "find user by email")
	}
	return user, nil
}

func (r *Users) FindByIDAndRole(ctx context.Context, id int64, role auth.Role) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND role = $2`, id, string(role))
	user, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "find user by id and role")
	}
	return user, nil
}

func (r *Users) Insert(ctx context.Context, user *auth.User) (int64, error) {
	if user == nil {
		return 0, errors.New("user is required", errors.CategoryBadInput)
	}

	createdAt := time.Now().UTC()
	if user.CreatedAt != nil {
		createdAt = user.CreatedAt.UTC()
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, phone, city, age, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		user.Name, user.Email, user.PasswordHash, string(user.Role),
		nullString(user.Phone), nullString(user.City), user.Age, createdAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, auth.ErrDuplicateEmail
		}
		return 0, errors.Wrap(err, errors.CategoryInternal, "insert user")
	}

	user.ID = id
	return id, nil
}

func (r *Users) UpdateProfile(ctx context.Context, id int64, role auth.Role, profile auth.Profile) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $1, email = $2, phone = $3, city = $4, age = $5
		WHERE id = $6 AND role = $7`,
		profile.Name, profile.Email, nullString(profile.Phone), nullString(profile.City), profile.Age,
		id, string(role),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.ErrDuplicateEmail
		}
		return errors.Wrap(err, errors.CategoryInternal, "update user profile")
	}
	return expectRow(tag)
}

func (r *Users) UpdateSecret(ctx context.Context, id int64, role auth.Role, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2 AND role = $3`,
		passwordHash, id, string(role),
	)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "update user password")
	}
	return expectRow(tag)
}

func (r *Users) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "delete user")
	}
	return expectRow(tag)
}

func (r *Users) List(ctx context.Context) ([]*auth.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "list users")
	}
	defer rows.Close()

	users := make([]*auth.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "scan user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "iterate users")
	}
	return users, nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		user      auth.User
		role      string
		age       *int
		createdAt *time.Time
	)
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role,
		&user.Phone, &user.City, &age, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = auth.Role(role)
	user.Age = age
	user.CreatedAt = createdAt
	return &user, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.ErrIdentityNotFound
	}
	return errors.Wrap(err, errors.CategoryInternal, op)
}

func expectRow(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return auth.ErrIdentityNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
