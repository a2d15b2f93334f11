package auth

import (
	"context"
	"strings"

	"github.com/hbnb-dev/hbnb-backend/internal/users"
	"github.com/hbnb-dev/hbnb-backend/pkg/config"
	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
)

// CreateByAdmin is the privileged admission path. Callers must have already
// authorized the acting principal as an admin.
func (s *service) CreateByAdmin(ctx context.Context, in RegisterInput, isAdmin bool) (*models.User, error) {
	return s.admit(ctx, in, isAdmin)
}

// BootstrapAdmin seeds the configured administrator when no user holds that
// email yet. It reports whether a user was created.
func (s *service) BootstrapAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	if !cfg.Enabled() {
		return false, nil
	}

	if _, err := users.NewRepository(s.db.DB()).FindByEmail(ctx, strings.ToLower(strings.TrimSpace(cfg.Email))); err == nil {
		return false, nil
	} else if !db.IsNotFound(err) {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check admin email")
	}

	user, err := s.admit(ctx, RegisterInput{
		FirstName: cfg.FirstName,
		LastName:  cfg.LastName,
		Email:     cfg.Email,
		Password:  cfg.Password,
	}, true)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeConflict) {
			return false, nil
		}
		return false, err
	}

	if s.logg != nil {
		ctx = s.logg.WithEntity(ctx, "user", user.ID.String())
		s.logg.Info(ctx, "admin.bootstrapped")
	}
	return true, nil
}
