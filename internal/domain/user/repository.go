package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for users.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	Save(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Exists reports whether a user with the given id is registered.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
