package models

import "github.com/google/uuid"

// Actor is the authenticated staff identity threaded through every service
// call. Core operations receive it explicitly; nothing reads ambient session
// state.
type Actor struct {
	ID       uuid.UUID `json:"id"`
	Role     string    `json:"role"`
	TeamCode string    `json:"team_code"`
}

// IsSupervisor reports whether the actor holds supervisor privileges.
func (a Actor) IsSupervisor() bool {
	return a.Role == RoleSupervisor || a.Role == RoleAdmin
}
