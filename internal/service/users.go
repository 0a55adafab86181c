package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/lalith-99/kosboard/internal/auth"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/repository"
)

const minPasswordLen = 8

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// AdminInput is a new admin account.
type AdminInput struct {
	Name     string
	Email    string
	Password string
}

// CreateAdmin registers an admin account. An email that is already taken
// is a conflict, whatever role the existing account has.
func (s *Service) CreateAdmin(ctx context.Context, actor Actor, in AdminInput) (*models.User, error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		fe.add("name", "is required")
	}
	email := strings.TrimSpace(in.Email)
	if !validEmail(email) {
		fe.add("email", "must be a valid email address")
	}
	if len(in.Password) < minPasswordLen {
		fe.add("password", "must be at least 8 characters")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, s.internal("hash admin password", err)
	}
	user, err := s.users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if errors.Is(err, repository.ErrEmailTaken) {
		return nil, conflict("email already registered", err)
	}
	if err != nil {
		return nil, s.internal("create admin", err)
	}
	return user, nil
}
