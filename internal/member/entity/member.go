package entity

import "time"

// Member binds a user to a community with exactly one role.
// (Community, User) is unique.
type Member struct {
	ID        string    `json:"id" db:"id"`
	Community string    `json:"community" db:"community_id"`
	User      string    `json:"user" db:"user_id"`
	Role      string    `json:"role" db:"role_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
