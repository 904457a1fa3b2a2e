package entity

import (
	"slices"
	"time"
)

// Well-known role names seeded at startup.
const (
	CommunityAdmin  = "Community Admin"
	CommunityMember = "Community Member"
)

// Permission scopes carried by roles.
const (
	ScopeCommunityUpdate = "community:update"
	ScopeCommunityView   = "community:view"
	ScopeMemberAdd       = "member:add"
	ScopeMemberRemove    = "member:remove"
)

// Role is a named, ordered set of permission scopes.
type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Scopes    []string  `json:"scopes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasScope reports whether the role grants scope.
func (r *Role) HasScope(scope string) bool {
	return slices.Contains(r.Scopes, scope)
}

// Defaults returns fresh copies of the seeded roles, without ids or timestamps.
func Defaults() []Role {
	return []Role{
		{Name: CommunityAdmin, Scopes: []string{ScopeCommunityUpdate, ScopeMemberAdd, ScopeMemberRemove}},
		{Name: CommunityMember, Scopes: []string{ScopeCommunityView}},
	}
}
