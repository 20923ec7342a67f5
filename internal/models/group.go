package models

import "strings"

// Group represents a set of people who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	Description string

	// Members is the authoritative participant list. Balances are computed
	// over exactly these members, in this order.
	Members []Member

	// CreatedBy is the user ID of the group's creator.
	CreatedBy string

	CreatedAt int64
	UpdatedAt int64
}

// Member is one participant of a group.
type Member struct {
	// UserID is the member's stable id: a User.ID for registered users,
	// a generated guest id otherwise.
	UserID string

	Name  string
	Email string
	Phone string

	// IsAdmin members may remove members, change admins and delete the group.
	// A group always keeps at least one admin.
	IsAdmin bool

	JoinedAt int64
}

// FindMember returns the member with the given user ID.
func (g *Group) FindMember(userID string) (*Member, bool) {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i], true
		}
	}
	return nil, false
}

// FindMemberByEmail returns the member with the given email, compared case-insensitively.
func (g *Group) FindMemberByEmail(email string) (*Member, bool) {
	for i := range g.Members {
		if email != "" && strings.EqualFold(g.Members[i].Email, email) {
			return &g.Members[i], true
		}
	}
	return nil, false
}

// AdminCount returns the number of admins in the group.
func (g *Group) AdminCount() int {
	n := 0
	for _, m := range g.Members {
		if m.IsAdmin {
			n++
		}
	}
	return n
}
