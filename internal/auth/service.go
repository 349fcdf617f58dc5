package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/internal/users"
	pkgauth "github.com/linescout/linescout-backend/pkg/auth"
	"github.com/linescout/linescout-backend/pkg/auth/session"
	"github.com/linescout/linescout-backend/pkg/config"
	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/logger"
	"github.com/linescout/linescout-backend/pkg/security"
)

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// LoginInput carries the credentials posted by an internal user.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is the access/refresh pair returned to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Session is the authenticated result of a login or refresh.
type Session struct {
	User   *models.User `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

// Service defines the authentication operations for internal users.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*Session, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	repo     users.Repository
	sessions sessionManager
	jwtCfg   config.JWTConfig
	logger   *logger.Logger
}

// NewService wires the auth service.
func NewService(repo users.Repository, sessions sessionManager, jwtCfg config.JWTConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if strings.TrimSpace(jwtCfg.Secret) == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, sessions: sessions, jwtCfg: jwtCfg, logger: logg}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, invalidCredentials()
	}

	sess, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Error(ctx, "record last login", err)
	}
	return sess, nil
}

// Refresh accepts the expired access token plus the refresh token and rotates
// both. The old session is invalidated even when the access token has expired.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	access, err := s.mintAccess(user, newAccessID)
	if err != nil {
		return nil, err
	}
	return &Session{
		User: user,
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: newRefresh,
			ExpiresIn:    s.expiresIn(),
		},
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session identity missing")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issueSession(ctx context.Context, user *models.User) (*Session, error) {
	accessID := session.NewAccessID()
	access, err := s.mintAccess(user, accessID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}
	return &Session{
		User: user,
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    s.expiresIn(),
		},
	}, nil
}

func (s *service) mintAccess(user *models.User, accessID string) (string, error) {
	role, err := enums.ParseSystemRole(user.SystemRole)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve user role")
	}
	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   role,
		JTI:    accessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return token, nil
}

func (s *service) expiresIn() int64 {
	return int64(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute / time.Second)
}

// Same message for unknown email and wrong password.
func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}
