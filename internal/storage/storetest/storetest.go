// Package storetest holds the behaviour every storage.Store backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Run exercises a Store backend. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()

	newGroup := func(t *testing.T, store storage.Store, name string, members ...models.Member) *models.Group {
		t.Helper()
		group := &models.Group{Name: name, CreatedBy: members[0].UserID, Members: members}
		require.NoError(t, store.CreateGroup(ctx, group))
		return group
	}

	alice := models.Member{UserID: "u-alice", Name: "Alice", Email: "alice@example.com", IsAdmin: true}
	bob := models.Member{UserID: "u-bob", Name: "Bob", Email: "bob@example.com"}
	carol := models.Member{UserID: "guest-carol", Name: "Carol", Phone: "555-0100"}

	t.Run("CreateGroup generates ID and timestamps", func(t *testing.T) {
		store := newStore(t)
		group := newGroup(t, store, "Roommates", alice, bob)

		assert.NotEmpty(t, group.ID)
		assert.NotZero(t, group.CreatedAt)
		assert.NotZero(t, group.UpdatedAt)
		for _, m := range group.Members {
			assert.NotZero(t, m.JoinedAt)
		}
	})

	t.Run("GetGroup retrieves members in join order", func(t *testing.T) {
		store := newStore(t)
		original := newGroup(t, store, "Trip", alice, bob)
		require.NoError(t, store.AddGroupMember(ctx, original.ID, &carol))

		got, err := store.GetGroup(ctx, original.ID)
		require.NoError(t, err)

		assert.Equal(t, "Trip", got.Name)
		assert.Equal(t, alice.UserID, got.CreatedBy)
		require.Len(t, got.Members, 3)
		assert.Equal(t, []string{"u-alice", "u-bob", "guest-carol"},
			[]string{got.Members[0].UserID, got.Members[1].UserID, got.Members[2].UserID})
		assert.True(t, got.Members[0].IsAdmin)
		assert.False(t, got.Members[1].IsAdmin)
		assert.Equal(t, "555-0100", got.Members[2].Phone)
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		_, err := store.GetGroup(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListGroupsForUser only returns the user's groups", func(t *testing.T) {
		store := newStore(t)
		newGroup(t, store, "A", alice, bob)
		newGroup(t, store, "B", alice)
		newGroup(t, store, "C", carol)

		groups, err := store.ListGroupsForUser(ctx, alice.UserID)
		require.NoError(t, err)
		assert.Len(t, groups, 2)

		groups, err = store.ListGroupsForUser(ctx, bob.UserID)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "A", groups[0].Name)
		assert.Len(t, groups[0].Members, 2)

		groups, err = store.ListGroupsForUser(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("UpdateGroupMember and RemoveGroupMember", func(t *testing.T) {
		store := newStore(t)
		group := newGroup(t, store, "Office", alice, bob)

		promoted := bob
		promoted.IsAdmin = true
		promoted.Name = "Robert"
		require.NoError(t, store.UpdateGroupMember(ctx, group.ID, &promoted))

		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		m, ok := got.FindMember(bob.UserID)
		require.True(t, ok)
		assert.True(t, m.IsAdmin)
		assert.Equal(t, "Robert", m.Name)

		require.NoError(t, store.RemoveGroupMember(ctx, group.ID, alice.UserID))
		got, err = store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, got.Members, 1)
		assert.Equal(t, bob.UserID, got.Members[0].UserID)

		assert.ErrorIs(t, store.RemoveGroupMember(ctx, group.ID, alice.UserID), storage.ErrNotFound)
		assert.ErrorIs(t, store.UpdateGroupMember(ctx, group.ID, &carol), storage.ErrNotFound)
		assert.ErrorIs(t, store.AddGroupMember(ctx, "missing", &carol), storage.ErrNotFound)
	})

	t.Run("HandOverAndRemove is atomic", func(t *testing.T) {
		store := newStore(t)
		group := newGroup(t, store, "Office", alice, bob)

		err := store.HandOverAndRemove(ctx, group.ID, alice.UserID, carol.UserID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, got.Members, 2)

		require.NoError(t, store.HandOverAndRemove(ctx, group.ID, alice.UserID, bob.UserID))
		got, err = store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, got.Members, 1)
		assert.Equal(t, bob.UserID, got.Members[0].UserID)
		assert.True(t, got.Members[0].IsAdmin)
	})

	t.Run("CreateExpense and GetExpense keep split order", func(t *testing.T) {
		store := newStore(t)
		group := newGroup(t, store, "Dinner", alice, bob, carol)

		expense := &models.Expense{
			GroupID:     group.ID,
			Description: "Sushi",
			Amount:      60,
			PaidBy:      alice.UserID,
			SplitType:   models.SplitTypeCustom,
			SplitDetails: []models.SplitDetail{
				{UserID: carol.UserID, Amount: 30},
				{UserID: bob.UserID, Amount: 20},
				{UserID: alice.UserID, Amount: 10},
			},
			CreatedBy: alice.UserID,
		}
		require.NoError(t, store.CreateExpense(ctx, expense))
		assert.NotEmpty(t, expense.ID)
		assert.NotZero(t, expense.CreatedAt)
		assert.Equal(t, expense.CreatedAt, expense.Date)

		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, expense, got)
	})

	t.Run("ListExpensesByGroup", func(t *testing.T) {
		store := newStore(t)
		group := newGroup(t, store, "House", alice, bob)
		other := newGroup(t, store, "Other", alice)

		for i, amount := range []float64{10, 20, 30} {
			require.NoError(t, store.CreateExpense(ctx, &models.Expense{
				GroupID:     group.ID,
				Description: "Expense",
				Amount:      amount,
				Date:        int64(1700000000 + i),
				PaidBy:      alice.UserID,
				SplitType:   models.SplitTypeEqual,
				CreatedBy:   alice.UserID,
			}))
		}
		require.NoError(t, store.CreateExpense(ctx, &models.Expense{
			GroupID: other.ID, Description: "Elsewhere", Amount: 99, PaidBy: alice.UserID,
			SplitType: models.SplitTypeEqual, CreatedBy: alice.UserID,
		}))

		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, expenses, 3)
		for i, want := range []float64{10, 20, 30} {
			assert.Equal(t, want, expenses[i].Amount)
			assert.Empty(t, expenses[i].SplitDetails)
		}

		expenses, err = store.ListExpensesByGroup(ctx, "empty")
		require.NoError(t, err)
		assert.Empty(t, expenses)
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		store := newStore(t)
		group := newGroup(t, store, "Bills", alice, bob)
		expense := &models.Expense{
			GroupID: group.ID, Description: "Power", Amount: 80, PaidBy: bob.UserID,
			SplitType: models.SplitTypeCustom, CreatedBy: bob.UserID,
			SplitDetails: []models.SplitDetail{{UserID: alice.UserID, Amount: 80}},
		}
		require.NoError(t, store.CreateExpense(ctx, expense))

		require.NoError(t, store.DeleteExpense(ctx, expense.ID))
		_, err := store.GetExpense(ctx, expense.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteExpense(ctx, expense.ID), storage.ErrNotFound)
	})

	t.Run("DeleteGroup removes members and expenses", func(t *testing.T) {
		store := newStore(t)
		group := newGroup(t, store, "Gone", alice, bob)
		expense := &models.Expense{
			GroupID: group.ID, Description: "Taxi", Amount: 25, PaidBy: alice.UserID,
			SplitType: models.SplitTypeEqual, CreatedBy: alice.UserID,
		}
		require.NoError(t, store.CreateExpense(ctx, expense))

		require.NoError(t, store.DeleteGroup(ctx, group.ID))

		_, err := store.GetGroup(ctx, group.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.GetExpense(ctx, expense.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		groups, err := store.ListGroupsForUser(ctx, alice.UserID)
		require.NoError(t, err)
		assert.Empty(t, groups)

		assert.ErrorIs(t, store.DeleteGroup(ctx, group.ID), storage.ErrNotFound)
	})

	t.Run("Users", func(t *testing.T) {
		store := newStore(t)
		user := models.NewUser("dana@example.com", "Dana", "hash")
		require.NoError(t, store.CreateUser(ctx, user))

		byEmail, err := store.GetUserByEmail(ctx, "dana@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, user, byEmail)

		byID, err := store.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dana", byID.DisplayName)

		missing, err := store.GetUserByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, missing)

		_, err = store.GetUserByID(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		duplicate := models.NewUser("dana@example.com", "Other Dana", "hash")
		assert.Error(t, store.CreateUser(ctx, duplicate))
	})
}
