package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// Auther runs the credential flows: register, login, change password, and
// the self-service and admin account operations built on the same store.
// It holds no mutable state after construction and is safe for concurrent use.
type Auther struct {
	store        IdentityStore
	hasher       *Hasher
	provider     *UserProvider
	tokenService TokenService
	logger       Logger
	activitySink ActivitySink
	metrics      *Metrics
	now          func() time.Time
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store IdentityStore, opts Config) *Auther {
	hasher := NewHasher(opts.GetPasswordHashCost())
	return &Auther{
		store:        store,
		hasher:       hasher,
		provider:     NewUserProvider(store, hasher),
		tokenService: NewTokenService(opts),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger == nil {
		return s
	}
	s.logger = logger
	s.provider.WithLogger(logger)
	if ts, ok := s.tokenService.(*TokenServiceImpl); ok {
		WithTokenLogger(logger)(ts)
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenService replaces the token service built from Config
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithMetrics enables hash timing
func (s *Auther) WithMetrics(m *Metrics) *Auther {
	s.metrics = m
	s.provider.WithMetrics(m)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register creates an identity and returns it with a fresh token. The
// duplicate pre-check gives a fast answer, the store unique constraint
// settles concurrent registrations.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (*AuthResult, error) {
	if err := msg.Validate(); err != nil {
		s.emitAuthEvent(ctx, ActivityEventRegisterFailure, 0, "", map[string]any{
			"email": msg.Email,
			"error": err.Error(),
		})
		return nil, err
	}

	role, _ := ParseRole(msg.Role)

	if _, err := s.store.FindByEmail(ctx, msg.Email); err == nil {
		s.emitAuthEvent(ctx, ActivityEventRegisterFailure, 0, role, map[string]any{
			"email": msg.Email,
			"error": ErrDuplicateEmail.Error(),
		})
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrIdentityNotFound) {
		s.logger.Error("Register lookup error: %v", err)
		return nil, storeError(err, "failed to check email")
	}

	hash, err := s.hash(msg.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &User{
		Name:         msg.Name,
		Email:        msg.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    &now,
	}

	id, err := s.store.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			s.emitAuthEvent(ctx, ActivityEventRegisterFailure, 0, role, map[string]any{
				"email": msg.Email,
				"error": err.Error(),
			})
			return nil, ErrDuplicateEmail
		}
		s.logger.Error("Register insert error: %v", err)
		return nil, storeError(err, "failed to create user")
	}
	user.ID = id

	token, err := s.tokenService.Generate(IdentityFromUser(user))
	if err != nil {
		s.logger.Error("Register token error: %v", err)
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventRegisterSuccess, id, role, map[string]any{
		"email": user.Email,
	})

	return &AuthResult{User: user.Public(), Token: token}, nil
}

// Login verifies the credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Auther) Login(ctx context.Context, msg LoginMessage) (*AuthResult, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	user, err := s.provider.VerifyIdentity(ctx, msg.Email, msg.Password)
	if err != nil {
		s.logger.Debug("Login verify identity error: %v", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, 0, "", map[string]any{
			"email": msg.Email,
		})
		return nil, err
	}

	token, err := s.tokenService.Generate(IdentityFromUser(user))
	if err != nil {
		s.logger.Error("Login token error: %v", err)
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, user.ID, user.Role, map[string]any{
		"email": user.Email,
	})

	return &AuthResult{User: user.Public(), Token: token}, nil
}

// ChangePassword replaces the stored secret for (id, role). The current
// password is not asked for. Tokens issued earlier stay valid until they
// expire.
func (s *Auther) ChangePassword(ctx context.Context, id int64, role Role, msg ChangePasswordMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	hash, err := s.hash(msg.Password)
	if err != nil {
		return err
	}

	if err := s.store.UpdateSecret(ctx, id, role, hash); err != nil {
		s.emitAuthEvent(ctx, ActivityEventPasswordChangeFailure, id, role, map[string]any{
			"error": err.Error(),
		})
		return storeError(err, "failed to update password")
	}

	s.emitAuthEvent(ctx, ActivityEventPasswordChanged, id, role, nil)
	return nil
}

// Profile returns the record for (id, role)
func (s *Auther) Profile(ctx context.Context, id int64, role Role) (*User, error) {
	user, err := s.store.FindByIDAndRole(ctx, id, role)
	if err != nil {
		return nil, storeError(err, "failed to load profile")
	}
	return user, nil
}

// UpdateProfile overwrites the profile fields for (id, role)
func (s *Auther) UpdateProfile(ctx context.Context, id int64, role Role, msg UpdateProfileMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	if err := s.store.UpdateProfile(ctx, id, role, msg.Profile()); err != nil {
		return storeError(err, "failed to update profile")
	}

	s.emitAuthEvent(ctx, ActivityEventProfileUpdated, id, role, nil)
	return nil
}

// ListUsers returns every identity
func (s *Auther) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list users")
	}
	return users, nil
}

// DeleteUser removes an identity by id regardless of role
func (s *Auther) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete user")
	}

	s.emitAuthEvent(ctx, ActivityEventAccountDeleted, id, "", nil)
	return nil
}

// SessionFromToken validates a raw token and returns its claims
func (s *Auther) SessionFromToken(raw string) (*JWTClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Debug("SessionFromToken validation failed: %v", err)
		return nil, err
	}
	return claims, nil
}

func (s *Auther) hash(password string) (string, error) {
	start := time.Now()
	hash, err := s.hasher.HashPassword(password)
	s.metrics.ObserveHash(time.Since(start))
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return "", err
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}
	return hash, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID int64, role Role, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      actorFromContext(ctx, userID),
		UserID:     userID,
		Role:       role,
		Metadata:   metadata,
		OccurredAt: s.now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func actorFromContext(ctx context.Context, userID int64) ActorRef {
	if claims, ok := GetClaims(ctx); ok {
		return ActorRef{ID: claims.UID, Type: string(claims.UserRole)}
	}
	if userID > 0 {
		return ActorRef{ID: userID, Type: "user"}
	}
	return ActorRef{Type: "unknown"}
}
