package memory

import (
	"context"
	"sort"

	"eventcircle/internal/domain"
)

type userRepository struct {
	users []domain.User
}

// NewUserRepository returns a read-only repository over a fixed user set, ordered by id.
func NewUserRepository(users []domain.User) domain.UserRepository {
	sorted := append([]domain.User(nil), users...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &userRepository{users: sorted}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	return append(make([]domain.User, 0, len(r.users)), r.users...), nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}
