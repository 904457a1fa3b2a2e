package entity

import "time"

// Community is a group owned by the user who created it. Owner never changes.
type Community struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	Owner     string    `json:"owner" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Ref is the compact {id, name} form embedded in member listings.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MemberDetail is a member row expanded with user and role names.
type MemberDetail struct {
	ID        string    `json:"id"`
	Community string    `json:"community"`
	User      Ref       `json:"user"`
	Role      Ref       `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
