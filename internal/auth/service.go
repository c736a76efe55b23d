package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ezoostore/storefront-backend/internal/users"
	pkgAuth "github.com/ezoostore/storefront-backend/pkg/auth"
	"github.com/ezoostore/storefront-backend/pkg/auth/session"
	"github.com/ezoostore/storefront-backend/pkg/config"
	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/ezoostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
	"github.com/ezoostore/storefront-backend/pkg/security"
	"github.com/google/uuid"
)

const (
	loginHistoryDateLayout = "2006-01-02"
	maxLoginHistory        = 100
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Signup(ctx context.Context, req SignupRequest, meta ClientMeta) (*AuthResponse, error)
	RegisterAdmin(ctx context.Context, req SignupRequest, meta ClientMeta) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest, meta ClientMeta) (*AuthResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	RecordLogin(ctx context.Context, id string, at time.Time, history []string) error
	UpdatePassword(ctx context.Context, id, hash string) error
}

type refreshManager interface {
	Generate(ctx context.Context, accessID string, owner session.Owner) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, session.Owner, error)
	Revoke(ctx context.Context, accessID string) error
}

type sessionTracker interface {
	Touch(ctx context.Context, userID, deviceID, tokenID, userAgent string) (*models.Session, error)
	Rotate(ctx context.Context, oldTokenID, newTokenID string) error
	RevokeToken(ctx context.Context, tokenID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Users              userRepository
	Refresh            refreshManager
	Sessions           sessionTracker
	JWTConfig          config.JWTConfig
	PasswordConfig     config.PasswordConfig
	Logger             *logger.Logger
	AllowAdminRegister bool
}

type service struct {
	users              userRepository
	refresh            refreshManager
	sessions           sessionTracker
	jwtCfg             config.JWTConfig
	passwordCfg        config.PasswordConfig
	logg               *logger.Logger
	allowAdminRegister bool
	now                func() time.Time
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Refresh == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session tracker is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		users:              params.Users,
		refresh:            params.Refresh,
		sessions:           params.Sessions,
		jwtCfg:             params.JWTConfig,
		passwordCfg:        params.PasswordConfig,
		logg:               params.Logger,
		allowAdminRegister: params.AllowAdminRegister,
		now:                func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Signup(ctx context.Context, req SignupRequest, meta ClientMeta) (*AuthResponse, error) {
	return s.register(ctx, req, meta, enums.UserRoleUser)
}

// RegisterAdmin bootstraps an admin account. It is disabled in production.
func (s *service) RegisterAdmin(ctx context.Context, req SignupRequest, meta ClientMeta) (*AuthResponse, error) {
	if !s.allowAdminRegister {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin registration is disabled")
	}
	return s.register(ctx, req, meta, enums.UserRoleAdmin)
}

func (s *service) register(ctx context.Context, req SignupRequest, meta ClientMeta, role enums.UserRole) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)
	name := strings.TrimSpace(req.Name)
	if email == "" || phone == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email and phone are required")
	}

	if _, err := s.users.FindByEmailOrPhone(ctx, email, phone); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email or phone already registered")
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user identity")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		if errors.Is(err, security.ErrWeakPassword) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         role,
		LoginHistory: []string{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email or phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"user_id": user.ID, "role": role}), "auth.signup")
	return s.issue(ctx, user, deviceID, meta)
}

// Login checks credentials, records the login and issues tokens for the device.
// Unknown emails are 404 and wrong passwords 401, as the storefront UI expects.
func (s *service) Login(ctx context.Context, req LoginRequest, meta ClientMeta) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	deviceID := strings.TrimSpace(req.DeviceID)
	if email == "" || req.Password == "" || deviceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email, password and deviceId are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "wrong password")
	}
	if security.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, req.Password)
	}

	now := s.now()
	history := prependLoginDate(user.LoginHistory, now)
	if err := s.users.RecordLogin(ctx, user.ID, now, history); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record login")
	}
	user.LoginCount++
	user.LastLoginAt = &now
	user.LoginHistory = history

	return s.issue(ctx, user, deviceID, meta)
}

// Refresh rotates the refresh token bound to the access token's jti and
// mints a new access token for the same device.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	newAccessID, newRefresh, owner, err := s.refresh.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate refresh token")
	}
	if owner.UserID != claims.UserID {
		_ = s.refresh.Revoke(ctx, newAccessID)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, owner.UserID)
	if err != nil {
		_ = s.refresh.Revoke(ctx, newAccessID)
		if errors.Is(err, db.ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "user no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if err := s.sessions.Rotate(ctx, claims.ID, newAccessID); err != nil {
		_ = s.refresh.Revoke(ctx, newAccessID)
		return nil, err
	}

	now := s.now()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		Role:     user.Role,
		DeviceID: owner.DeviceID,
		JTI:      newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &AuthResponse{
		AccessToken:  token,
		RefreshToken: newRefresh,
		ExpiresAt:    now.Add(s.jwtCfg.AccessTokenTTL()),
		DeviceID:     owner.DeviceID,
		User:         users.FromModel(user),
	}, nil
}

// Logout revokes the device session behind the current access token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	return s.sessions.RevokeToken(ctx, accessID)
}

func (s *service) issue(ctx context.Context, user *models.User, deviceID string, meta ClientMeta) (*AuthResponse, error) {
	now := s.now()
	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		Role:     user.Role,
		DeviceID: deviceID,
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.refresh.Generate(ctx, accessID, session.Owner{UserID: user.ID, DeviceID: deviceID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	sess, err := s.sessions.Touch(ctx, user.ID, deviceID, accessID, meta.UserAgent)
	if err != nil {
		_ = s.refresh.Revoke(ctx, accessID)
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  token,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(s.jwtCfg.AccessTokenTTL()),
		SessionID:    sess.ID,
		DeviceID:     deviceID,
		User:         users.FromModel(user),
	}, nil
}

func (s *service) upgradeHash(ctx context.Context, user *models.User, password string) {
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err == nil {
		err = s.users.UpdatePassword(ctx, user.ID, hash)
	}
	if err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID), fmt.Sprintf("auth.rehash_failed: %v", err))
		return
	}
	user.PasswordHash = hash
}

// prependLoginDate puts today's date first, keeping at most maxLoginHistory entries.
func prependLoginDate(history []string, now time.Time) []string {
	out := make([]string, 0, len(history)+1)
	out = append(out, now.Format(loginHistoryDateLayout))
	out = append(out, history...)
	if len(out) > maxLoginHistory {
		out = out[:maxLoginHistory]
	}
	return out
}
