package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
)

// UserDTO is the only user shape that leaves the service. It has no field
// for the password digest, so no handler can leak one by accident.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewDTO(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := UserDTO{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	return &dto
}

func NewDTOs(list []models.User) []UserDTO {
	out := make([]UserDTO, len(list))
	for i := range list {
		out[i] = *NewDTO(&list[i])
	}
	return out
}

// CreateUserDTO carries an already validated, normalized admission. The
// password arrives hashed.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsAdmin      bool
}

func (c CreateUserDTO) ToModel(now time.Time) *models.User {
	return &models.User{
		Base:         models.NewBase(now),
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		IsAdmin:      c.IsAdmin,
	}
}
