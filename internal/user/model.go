package user

import (
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(apperror.KindNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(apperror.KindConflict, "email already used")
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid email or password")
	ErrEmailRequired      = apperror.New(apperror.KindInvalidArgument, "email is required")
	ErrInvalidEmail       = apperror.New(apperror.KindInvalidArgument, "email is invalid")
	ErrNameRequired       = apperror.New(apperror.KindInvalidArgument, "name is required")
	ErrPasswordTooShort   = apperror.New(apperror.KindInvalidArgument, "password is too short")
)

// User is an account that can list items and book other users' items.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}
