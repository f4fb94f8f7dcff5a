package domain

import "context"

// User is a person who can host, attend or ask to join events.
// swagger:model User
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUser returns a new User with the given fields.
func NewUser(id int64, name, email string) User {
	return User{ID: id, Name: name, Email: email}
}

// UserRepository defines read access to the fixed user set.
type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}
