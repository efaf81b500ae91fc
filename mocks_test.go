package auth_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/osnetwork/go-auth"
)

// MockIdentityStore implements auth.IdentityStore
type MockIdentityStore struct {
	mock.Mock
}

var _ auth.IdentityStore = (*MockIdentityStore)(nil)

func (m *MockIdentityStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockIdentityStore) FindByIDAndRole(ctx context.Context, id int64, role auth.Role) (*auth.User, error) {
	args := m.Called(ctx, id, role)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockIdentityStore) Insert(ctx context.Context, user *auth.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIdentityStore) UpdateProfile(ctx context.Context, id int64, role auth.Role, profile auth.Profile) error {
	args := m.Called(ctx, id, role, profile)
	return args.Error(0)
}

func (m *MockIdentityStore) UpdateSecret(ctx context.Context, id int64, role auth.Role, passwordHash string) error {
	args := m.Called(ctx, id, role, passwordHash)
	return args.Error(0)
}

func (m *MockIdentityStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockIdentityStore) List(ctx context.Context) ([]*auth.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*auth.User)
	return users, args.Error(1)
}

// MockLogger records every formatted line
type MockLogger struct {
	mu    sync.Mutex
	Lines []string
}

func (l *MockLogger) record(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Lines = append(l.Lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *MockLogger) Debug(format string, args ...any) { l.record("DBG", format, args...) }
func (l *MockLogger) Info(format string, args ...any)  { l.record("INF", format, args...) }
func (l *MockLogger) Warn(format string, args ...any)  { l.record("WRN", format, args...) }
func (l *MockLogger) Error(format string, args ...any) { l.record("ERR", format, args...) }

type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
	err    error
}

func (s *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSink) types() []auth.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

// memStore is an in-memory IdentityStore for flows that need real
// round trips through hashing and tokens.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*auth.User
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]*auth.User{}}
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrIdentityNotFound
}

func (s *memStore) FindByIDAndRole(_ context.Context, id int64, role auth.Role) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Role != role {
		return nil, auth.ErrIdentityNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) Insert(_ context.Context, user *auth.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return 0, auth.ErrDuplicateEmail
		}
	}
	s.nextID++
	cp := *user
	cp.ID = s.nextID
	s.users[cp.ID] = &cp
	return cp.ID, nil
}

func (s *memStore) UpdateProfile(_ context.Context, id int64, role auth.Role, p auth.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Role != role {
		return auth.ErrIdentityNotFound
	}
	for otherID, other := range s.users {
		if otherID != id && other.Email == p.Email {
			return auth.ErrDuplicateEmail
		}
	}
	u.Name, u.Email, u.Phone, u.City, u.Age = p.Name, p.Email, p.Phone, p.City, p.Age
	return nil
}

func (s *memStore) UpdateSecret(_ context.Context, id int64, role auth.Role, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Role != role {
		return auth.ErrIdentityNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *memStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return auth.ErrIdentityNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *memStore) List(_ context.Context) ([]*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*auth.User, 0, len(s.users))
	for id := int64(1); id <= s.nextID; id++ {
		if u, ok := s.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func testOptions() auth.Options {
	opts := auth.DefaultOptions()
	opts.SigningKey = "test-signing-key"
	opts.PasswordHashCost = 4
	return opts
}
