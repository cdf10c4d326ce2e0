package domain

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole maps an empty role to customer and rejects anything unknown.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case "":
		return RoleCustomer, nil
	case RoleCustomer, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

// User is a registered account.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Subscriber is a newsletter email.
type Subscriber struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}
