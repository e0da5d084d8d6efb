package requests

import "github.com/dexhub/hr-portal/internal/models"

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	ID     uint
	Role   models.Role
	Active bool
}

// ActorFromUser builds an Actor from a loaded user.
func ActorFromUser(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, Active: u.IsActive}
}

// IsAdmin reports whether the actor has the ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanDecide reports whether actor may decide a request owned by owner: admins
// always, managers only for their direct reports. Inactive actors never decide.
// A nil owner can only be decided by an admin.
func CanDecide(actor Actor, owner *models.User) bool {
	if !actor.Active {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return owner != nil && owner.ManagerID != nil && *owner.ManagerID == actor.ID
	}
	return false
}
