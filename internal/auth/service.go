package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbnb-dev/hbnb-backend/internal/users"
	pkgAuth "github.com/hbnb-dev/hbnb-backend/pkg/auth"
	"github.com/hbnb-dev/hbnb-backend/pkg/auth/session"
	"github.com/hbnb-dev/hbnb-backend/pkg/config"
	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
)

// Service admits users, checks credentials and issues sessions.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	CreateByAdmin(ctx context.Context, in RegisterInput, isAdmin bool) (*models.User, error)
	VerifyCredentials(ctx context.Context, email, password string) (*models.User, error)
	IssueSession(ctx context.Context, user *models.User) (*LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
	RevokeUser(ctx context.Context, userID uuid.UUID) error
	BootstrapAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error)
	HashPassword(secret string) (string, error)
}

type txRunner interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type passwordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) (bool, error)
}

type sessionManager interface {
	Generate(ctx context.Context, userID uuid.UUID, accessID string) (string, error)
	Rotate(ctx context.Context, userID uuid.UUID, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
	RevokeUser(ctx context.Context, userID uuid.UUID) error
}

// ServiceParams bundles the dependencies required to build an auth service.
// SessionManager is optional; without it no refresh tokens are issued.
type ServiceParams struct {
	DB             txRunner
	Hasher         passwordHasher
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
}

type service struct {
	db      txRunner
	hasher  passwordHasher
	session sessionManager
	jwtCfg  config.JWTConfig
	logg    *logger.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

// NewService constructs the identity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &service{
		db:      params.DB,
		hasher:  params.Hasher,
		session: params.SessionManager,
		jwtCfg:  params.JWTConfig,
		logg:    params.Logger,
	}, nil
}

func (s *service) HashPassword(secret string) (string, error) {
	digest, err := s.hasher.Hash(secret)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return digest, nil
}

// VerifyCredentials fails with the same error whether the email is unknown
// or the password is wrong.
func (s *service) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || password == "" {
		return nil, pkgerrors.InvalidCredentials()
	}

	user, err := users.NewRepository(s.db.DB()).FindByEmail(ctx, normalized)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
		// Burn a verification so unknown emails cost the same as bad passwords.
		_, _ = s.hasher.Verify(password, s.dummy())
		return nil, pkgerrors.InvalidCredentials()
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.InvalidCredentials()
	}
	s.upgradeDigest(ctx, user, password)
	return user, nil
}

type rehasher interface {
	NeedsRehash(digest string) bool
}

// upgradeDigest re-hashes a verified password whose digest predates the
// current hasher parameters. Failure leaves the old digest in place.
func (s *service) upgradeDigest(ctx context.Context, user *models.User, password string) {
	r, ok := s.hasher.(rehasher)
	if !ok || !r.NeedsRehash(user.PasswordHash) {
		return
	}
	digest, err := s.hasher.Hash(password)
	if err == nil {
		_, err = users.NewRepository(s.db.DB()).Update(ctx, user.ID, map[string]any{"password_hash": digest})
	}
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithEntity(ctx, "user", user.ID.String()), "user.rehash_failed")
		}
		return
	}
	user.PasswordHash = digest
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.IssueSession(ctx, user)
}

// IssueSession mints an access token whose jti doubles as the refresh
// session key when sessions are enabled.
func (s *service) IssueSession(ctx context.Context, user *models.User) (*LoginResponse, error) {
	return s.issue(ctx, user, session.NewAccessID(), true)
}

func (s *service) issue(ctx context.Context, user *models.User, accessID string, generateRefresh bool) (*LoginResponse, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user is required")
	}
	now := time.Now().UTC()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		JTI:     accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	resp := &LoginResponse{
		AccessToken: accessToken,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(s.jwtCfg.AccessTokenTTL().Seconds()),
		User:        users.NewDTO(user),
	}
	if s.session != nil && generateRefresh {
		refreshToken, err := s.session.Generate(ctx, user.ID, accessID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
		}
		resp.RefreshToken = refreshToken
	}
	return resp, nil
}

// Refresh rotates a session. The admin flag is reloaded so privilege changes
// take effect on the next token.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error) {
	if s.session == nil {
		return nil, pkgerrors.Unauthenticated("refresh sessions are not enabled")
	}
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.Unauthenticated("invalid access token")
	}

	newAccessID, refreshToken, err := s.session.Rotate(ctx, claims.UserID, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.Unauthenticated("invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	user, err := users.NewRepository(s.db.DB()).FindByID(ctx, claims.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			_ = s.session.Revoke(ctx, newAccessID)
			return nil, pkgerrors.Unauthenticated("account no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload user")
	}

	resp, err := s.issue(ctx, user, newAccessID, false)
	if err != nil {
		return nil, err
	}
	resp.RefreshToken = refreshToken
	return resp, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if s.session == nil || strings.TrimSpace(accessID) == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// RevokeUser ends every session of userID, so a deleted or demoted account
// cannot keep using tokens minted before the change.
func (s *service) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	if s.session == nil {
		return nil
	}
	if err := s.session.RevokeUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke user sessions")
	}
	return nil
}

func (s *service) dummy() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyDigest = digest
		}
	})
	return s.dummyDigest
}
