package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/nexis/campus-services/internal/auth"
	"github.com/nexis/campus-services/internal/config"
	"github.com/nexis/campus-services/internal/domain"
	"github.com/nexis/campus-services/internal/events"
	"github.com/nexis/campus-services/internal/persistence"
	"github.com/nexis/campus-services/internal/repository"
	"github.com/nexis/campus-services/internal/token"
	apperrors "github.com/nexis/campus-services/pkg/util"
)

const profileCacheTTL = 5 * time.Minute

// LoginResult bundles what a successful login returns to the client.
type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // milliseconds
}

// RegisterInput carries the self-registration payload.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
}

// AuthService coordinates registration, login and profile flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *token.Manager
	cache      *persistence.Redis
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg *config.Config, users repository.UserRepository, cache *persistence.Redis, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		cache:      cache,
		dispatcher: dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *token.Manager {
	return s.tokens
}

// Register creates a new account with the default STUDENT role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.NewConflict("username already taken", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		Address:      input.Address,
		Role:         domain.RoleStudent,
		Enabled:      true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventStudentRegistered, user.Username, events.StudentRegisteredPayload{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	return user, nil
}

// Login authenticates credentials and issues the token pair. The access
// token embeds the full identity claim set; the refresh token carries only
// the subject.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.Enabled {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	accessToken, _, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := s.tokens.IssueSubject(user.Username)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.tokens.TTL().Milliseconds(),
	}, nil
}

// Refresh validates the presented token and issues a fresh subject-only
// access token. The old token is echoed back as the refresh token.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	tokenStr := token.FromAuthorizationHeader(rawToken)
	if tokenStr == "" {
		tokenStr = rawToken
	}
	if !s.tokens.Validate(tokenStr) {
		return nil, apperrors.NewUnauthorized("invalid or expired token")
	}

	username := s.tokens.ExtractSubject(tokenStr)
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("unknown user")
		}
		return nil, err
	}

	accessToken, _, err := s.tokens.IssueSubject(username)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: tokenStr,
		ExpiresIn:    s.tokens.TTL().Milliseconds(),
	}, nil
}

// CurrentUser resolves the caller's profile, consulting the Redis cache
// before the database.
func (s *AuthService) CurrentUser(ctx context.Context, username string) (*domain.User, error) {
	if cached := s.cachedProfile(ctx, username); cached != nil {
		return cached, nil
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	s.cacheProfile(ctx, user)
	return user, nil
}

// ProfileUpdate carries optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Address     *string
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *AuthService) UpdateProfile(ctx context.Context, username string, update ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
	}
	if update.Address != nil {
		user.Address = *update.Address
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidateProfile(ctx, username)
	return user, nil
}

// CreateStudent provisions a STUDENT account on behalf of an administrator.
func (s *AuthService) CreateStudent(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.Register(ctx, input)
}

// ListStudents returns all STUDENT accounts.
func (s *AuthService) ListStudents(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListByRole(ctx, domain.RoleStudent)
}

// GetStudent returns one STUDENT account by id.
func (s *AuthService) GetStudent(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleStudent {
		return nil, apperrors.NewNotFound("student", map[string]any{"id": id})
	}
	return user, nil
}

// UpdateStudent applies a partial profile update to a STUDENT account.
func (s *AuthService) UpdateStudent(ctx context.Context, id int64, update ProfileUpdate) (*domain.User, error) {
	user, err := s.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.UpdateProfile(ctx, user.Username, update)
}

// DeleteStudent removes a STUDENT account.
func (s *AuthService) DeleteStudent(ctx context.Context, id int64) error {
	user, err := s.GetStudent(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateProfile(ctx, user.Username)
	return nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subject string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func profileCacheKey(username string) string {
	return "auth:profile:" + username
}

func (s *AuthService) cachedProfile(ctx context.Context, username string) *domain.User {
	if s.cache == nil || s.cache.Client == nil {
		return nil
	}
	raw, err := s.cache.Client.Get(ctx, profileCacheKey(username)).Bytes()
	if err != nil {
		return nil
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil
	}
	return &user
}

func (s *AuthService) cacheProfile(ctx context.Context, user *domain.User) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	// never put the password hash in the cache
	copied := *user
	copied.PasswordHash = ""
	raw, err := json.Marshal(&copied)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, profileCacheKey(user.Username), raw, profileCacheTTL).Err(); err != nil {
		s.logger.Debug("profile cache write failed", zap.Error(err))
	}
}

func (s *AuthService) invalidateProfile(ctx context.Context, username string) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	_ = s.cache.Client.Del(ctx, profileCacheKey(username)).Err()
}

func identityOf(user *domain.User) token.Identity {
	return token.Identity{
		Username:    user.Username,
		Role:        string(user.Role),
		UserID:      user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.PhoneNumber,
		Enabled:     user.Enabled,
	}
}
