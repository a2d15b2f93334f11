package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hbnb-dev/hbnb-backend/internal/users"
	"github.com/hbnb-dev/hbnb-backend/internal/validation"
	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
)

// Register is the self-service admission path; it can never grant admin.
func (s *service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.admit(ctx, in, false)
}

func (s *service) admit(ctx context.Context, in RegisterInput, isAdmin bool) (*models.User, error) {
	email, err := validation.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	fields := validation.UserFields{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
	}
	if err := validation.User(fields); err != nil {
		return nil, err
	}
	if err := validation.Password(in.Password); err != nil {
		return nil, err
	}

	digest, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.Uniqueness("user", "email", email)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := repo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: digest,
			FirstName:    fields.FirstName,
			LastName:     fields.LastName,
			IsAdmin:      isAdmin,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.Uniqueness("user", "email", email)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
