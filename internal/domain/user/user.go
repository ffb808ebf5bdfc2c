package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lendshare/service-lending/internal/platform/domain"
)

// User is the aggregate root for a registered user of the lending
// service. Users act as item owners and as bookers.
type User struct {
	id        uuid.UUID
	name      string
	email     string
	createdAt time.Time
	updatedAt time.Time
}

// NewUser creates a new user with validated fields.
func NewUser(name, email string) (*User, error) {
	if name == "" {
		return nil, domain.NewValidationError("user name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &User{
		id:        uuid.New(),
		name:      name,
		email:     email,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a User from persistence data (no validation).
func Reconstruct(id uuid.UUID, name, email string, createdAt, updatedAt time.Time) *User {
	return &User{
		id:        id,
		name:      name,
		email:     email,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func validateEmail(email string) error {
	if email == "" {
		return domain.NewValidationError("user email is required")
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return domain.NewValidationError("user email is malformed")
	}
	return nil
}

// Getters.
func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// Update applies partial updates to the profile. Empty fields keep
// their current values; a new email is re-validated.
func (u *User) Update(name, email string) error {
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
		u.email = email
	}
	if name != "" {
		u.name = name
	}
	u.updatedAt = time.Now().UTC()
	return nil
}
