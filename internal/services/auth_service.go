package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/forms"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const (
	DefaultSessionTTL  = 24 * time.Hour
	DefaultRememberTTL = 30 * 24 * time.Hour
)

// AuthService registers users and manages their sessions
type AuthService struct {
	store       Store
	sessionTTL  time.Duration
	rememberTTL time.Duration
	now         func() time.Time
	logger      *log.Logger
}

func NewAuthService(store Store, sessionTTL, rememberTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	if rememberTTL <= 0 {
		rememberTTL = DefaultRememberTTL
	}
	return &AuthService{
		store:       store,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
		now:         time.Now,
		logger:      log.NewDefault().WithComponent(log.ComponentAuth),
	}
}

// Register creates a user. The email check and the insert share one
// transaction; a concurrent duplicate is still caught by the unique index.
func (s *AuthService) Register(ctx context.Context, f forms.RegisterForm) (core.User, error) {
	if err := f.Validate(); err != nil {
		return core.User{}, err
	}

	hash, err := auth.HashPassword(f.Password)
	if err != nil {
		return core.User{}, fmt.Errorf("register: %w", err)
	}

	var user core.User
	err = s.store.InTx(ctx, func(q storage.Querier) error {
		_, err := q.GetUserByEmail(ctx, f.Email)
		switch {
		case err == nil:
			return core.ErrEmailTaken
		case !errors.Is(err, core.ErrNotFound):
			return err
		}
		user, err = q.CreateUser(ctx, storage.CreateUserParams{
			Email:        f.Email,
			PasswordHash: hash,
			CreatedAt:    s.now(),
		})
		return err
	})
	if errors.Is(err, core.ErrEmailTaken) {
		v := core.NewValidationError("email", forms.MsgEmailTaken)
		v.Cause = core.ErrEmailTaken
		return core.User{}, v
	}
	if err != nil {
		return core.User{}, fmt.Errorf("register: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldOperation, log.OpRegister, log.FieldUserID, user.ID)
	return user, nil
}

// Login checks credentials and opens a session. Unknown emails and wrong
// passwords both yield core.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, f forms.LoginForm) (core.Session, error) {
	if err := f.Validate(); err != nil {
		return core.Session{}, err
	}

	user, err := s.store.GetUserByEmail(ctx, f.Email)
	if errors.Is(err, core.ErrNotFound) {
		auth.BurnPasswordCheck(f.Password)
		return core.Session{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("login: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, f.Password) {
		s.logger.InfoContext(ctx, "Login rejected", log.FieldOperation, log.OpLogin, log.FieldUserID, user.ID)
		return core.Session{}, core.ErrInvalidCredentials
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		return core.Session{}, fmt.Errorf("login: %w", err)
	}
	now := s.now()
	ttl := s.sessionTTL
	if f.RememberMe {
		ttl = s.rememberTTL
	}
	sess := core.Session{
		Token:     token,
		TokenHash: auth.HashToken(token),
		UserID:    user.ID,
		Remember:  f.RememberMe,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return core.Session{}, fmt.Errorf("login: %w", err)
	}

	s.logger.InfoContext(ctx, "User logged in", log.FieldOperation, log.OpLogin, log.FieldUserID, user.ID, "remember", f.RememberMe)
	return sess, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.store.DeleteSession(ctx, auth.HashToken(token)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.DebugContext(ctx, "Session closed", log.FieldOperation, log.OpLogout)
	return nil
}

// Authenticate resolves a session cookie to its user. Missing, unknown and
// expired tokens all return core.ErrSessionExpired; expired rows are removed.
func (s *AuthService) Authenticate(ctx context.Context, token string) (core.User, core.Session, error) {
	if token == "" {
		return core.User{}, core.Session{}, core.ErrSessionExpired
	}
	hash := auth.HashToken(token)

	sess, err := s.store.GetSession(ctx, hash)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.Session{}, core.ErrSessionExpired
	}
	if err != nil {
		return core.User{}, core.Session{}, fmt.Errorf("authenticate: %w", err)
	}
	if sess.Expired(s.now()) {
		if err := s.store.DeleteSession(ctx, hash); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete expired session", log.FieldError, err)
		}
		return core.User{}, core.Session{}, core.ErrSessionExpired
	}

	user, err := s.store.GetUserByID(ctx, sess.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.Session{}, core.ErrSessionExpired
	}
	if err != nil {
		return core.User{}, core.Session{}, fmt.Errorf("authenticate: %w", err)
	}
	sess.Token = token
	return user, sess, nil
}

// PurgeExpiredSessions deletes every session past its expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "Purged expired sessions", "count", n)
	}
	return n, nil
}
