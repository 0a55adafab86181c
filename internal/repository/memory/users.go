package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/repository"
)

type UserStore struct {
	s *Store
}

// userByEmail must be called with the lock held.
func (s *Store) userByEmail(email string) (models.User, bool) {
	email = normalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

// insertUser must be called with the write lock held.
func (s *Store) insertUser(u models.User) models.User {
	u.ID = s.newID()
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt = s.now()
	s.users[u.ID] = u
	return u
}

func (us *UserStore) Create(_ context.Context, user models.User) (*models.User, error) {
	s := us.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.userByEmail(user.Email); taken {
		return nil, repository.ErrEmailTaken
	}
	u := s.insertUser(user)
	return &u, nil
}

func (us *UserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	us.s.mu.RLock()
	defer us.s.mu.RUnlock()

	u, ok := us.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (us *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	us.s.mu.RLock()
	defer us.s.mu.RUnlock()

	u, ok := us.s.userByEmail(email)
	if !ok {
		return nil, nil
	}
	return &u, nil
}
