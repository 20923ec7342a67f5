// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is wrapped by every lookup that finds no row.
var ErrNotFound = errors.New("not found")

// Store defines the interface for group, expense and user storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateGroup persists a new group with its initial members.
	// The group.ID, CreatedAt and UpdatedAt fields are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members in join order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns every group the user is a member of.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// DeleteGroup removes a group together with its members and expenses.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddGroupMember appends a member to a group.
	AddGroupMember(ctx context.Context, groupID string, member *models.Member) error

	// UpdateGroupMember overwrites a member's mutable fields (name, contact, admin flag).
	UpdateGroupMember(ctx context.Context, groupID string, member *models.Member) error

	// RemoveGroupMember removes a member from a group. Expenses referencing
	// the member are kept.
	RemoveGroupMember(ctx context.Context, groupID, userID string) error

	// HandOverAndRemove grants admin rights to successorID and removes userID
	// in a single transaction. Neither change is applied if either fails.
	HandOverAndRemove(ctx context.Context, groupID, userID, successorID string) error

	// CreateExpense persists a new expense and its split details.
	// The expense.ID and CreatedAt fields are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns all expenses of a group, oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// DeleteExpense removes an expense by ID.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateUser inserts a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil and no error when the email is unknown.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
