package service

import (
	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/models"
)

// Actor is the caller of a service operation, built per request from the
// token claims. Nothing about the caller is stored between calls.
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

// Operator is the actor for kosctl commands run by whoever has shell and
// database access.
var Operator = Actor{Role: models.RoleAdmin}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// canSee reports whether the actor may read data belonging to owner.
// Admins see everything; tenants only themselves.
func (a Actor) canSee(owner uuid.UUID) bool {
	return a.IsAdmin() || (a.UserID != uuid.Nil && a.UserID == owner)
}

func (a Actor) requireUser() error {
	if a.Role == "" {
		return &Error{Kind: KindUnauthorized, Message: "authentication required"}
	}
	return nil
}

func (a Actor) requireAdmin() error {
	if err := a.requireUser(); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return &Error{Kind: KindForbidden, Message: "admin role required"}
	}
	return nil
}
