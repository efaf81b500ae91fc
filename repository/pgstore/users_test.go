package pgstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/osnetwork/go-auth"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var userCols = []string{"id", "name", "email", "password_hash", "role", "phone", "city", "age", "created_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock
}

func TestUsers_FindByEmail(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	age := 27

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		wantRole  auth.Role
		wantAge   *int
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE email = \$1`).
					WithArgs("a@x.io").
					WillReturnRows(pgxmock.NewRows(userCols).
						AddRow(int64(7), "Ana", "a@x.io", "hash", "player", "+351912345678", "Porto", &age, &created))
			},
			wantRole: auth.RolePlayer,
			wantAge:  &age,
		},
		{
			name: "null optional columns",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE email = \$1`).
					WithArgs("a@x.io").
					WillReturnRows(pgxmock.NewRows(userCols).
						AddRow(int64(7), "Ana", "a@x.io", "hash", "coach", "", "", (*int)(nil), &created))
			},
			wantRole: auth.RoleCoach,
		},
		{
			name: "not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE email = \$1`).
					WithArgs("a@x.io").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: auth.ErrIdentityNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			user, err := NewUsers(mock).FindByEmail(context.Background(), "a@x.io")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(7), user.ID)
				assert.Equal(t, tt.wantRole, user.Role)
				assert.Equal(t, tt.wantAge, user.Age)
				require.NotNil(t, user.CreatedAt)
				assert.True(t, created.Equal(*user.CreatedAt))
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUsers_FindByEmail_DatabaseError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("a@x.io").
		WillReturnError(errors.New("connection refused"))

	_, err := NewUsers(mock).FindByEmail(context.Background(), "a@x.io")
	require.Error(t, err)
	assert.False(t, errors.Is(err, auth.ErrIdentityNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_FindByIDAndRole(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM users WHERE id = \$1 AND role = \$2`).
		WithArgs(int64(3), "admin").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewUsers(mock).FindByIDAndRole(context.Background(), 3, auth.RoleAdmin)
	assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_Insert(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantID    int64
		wantErr   error
	}{
		{
			name: "returns new id",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("Ana", "a@x.io", "hash", "player", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))
			},
			wantID: 42,
		},
		{
			name: "unique violation",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("Ana", "a@x.io", "hash", "player", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
			},
			wantErr: auth.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			user := &auth.User{Name: "Ana", Email: "a@x.io", PasswordHash: "hash", Role: auth.RolePlayer}
			id, err := NewUsers(mock).Insert(context.Background(), user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
				assert.Equal(t, tt.wantID, user.ID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUsers_UpdateProfile(t *testing.T) {
	age := 30
	profile := auth.Profile{Name: "Ana", Email: "ana@x.io", City: "Porto", Age: &age}

	tests := []struct {
		name    string
		result  pgconn.CommandTag
		err     error
		wantErr error
	}{
		{name: "updated", result: pgxmock.NewResult("UPDATE", 1)},
		{name: "no matching row", result: pgxmock.NewResult("UPDATE", 0), wantErr: auth.ErrIdentityNotFound},
		{name: "email collision", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, wantErr: auth.ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			exp := mock.ExpectExec(`UPDATE users SET name`).
				WithArgs("Ana", "ana@x.io", pgxmock.AnyArg(), "Porto", &age, int64(5), "coach")
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := NewUsers(mock).UpdateProfile(context.Background(), 5, auth.RoleCoach, profile)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUsers_UpdateSecret(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`UPDATE users SET password_hash = \$1 WHERE id = \$2 AND role = \$3`).
		WithArgs("newhash", int64(5), "user").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs("newhash", int64(5), "admin").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	users := NewUsers(mock)
	assert.NoError(t, users.UpdateSecret(context.Background(), 5, auth.RoleUser, "newhash"))
	assert.ErrorIs(t, users.UpdateSecret(context.Background(), 5, auth.RoleAdmin, "newhash"), auth.ErrIdentityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_Delete(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	users := NewUsers(mock)
	assert.NoError(t, users.Delete(context.Background(), 9))
	assert.ErrorIs(t, users.Delete(context.Background(), 9), auth.ErrIdentityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_List(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock := newMock(t)
	mock.ExpectQuery(`FROM users ORDER BY id`).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(1), "A", "a@x.io", "h", "user", "", "", (*int)(nil), &created).
			AddRow(int64(2), "B", "b@x.io", "h", "admin", "", "", (*int)(nil), &created))

	users, err := NewUsers(mock).List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, auth.RoleUser, users[0].Role)
	assert.Equal(t, auth.RoleAdmin, users[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, EnsureSchema(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}
