package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var abc = []Member{
	{UserID: "a", Name: "Alice"},
	{UserID: "b", Name: "Bob"},
	{UserID: "c", Name: "Charlie"},
}

func summaryFor(t *testing.T, summaries []BalanceSummary, userID string) BalanceSummary {
	t.Helper()
	for _, s := range summaries {
		if s.UserID == userID {
			return s
		}
	}
	t.Fatalf("no summary for %s", userID)
	return BalanceSummary{}
}

func TestComputeBalances_EqualSplit(t *testing.T) {
	summaries, err := ComputeBalances(abc, []Expense{
		{ID: "e1", Amount: 90, PaidBy: "a", SplitType: SplitEqual},
	})
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	alice := summaryFor(t, summaries, "a")
	assert.InDelta(t, 90.0, alice.TotalPaid, 1e-9)
	assert.InDelta(t, 30.0, alice.TotalOwed, 1e-9)
	assert.InDelta(t, 60.0, alice.Balance, 1e-9)
	assert.Equal(t, "Alice", alice.Name)

	for _, id := range []string{"b", "c"} {
		s := summaryFor(t, summaries, id)
		assert.InDelta(t, 0.0, s.TotalPaid, 1e-9, id)
		assert.InDelta(t, -30.0, s.Balance, 1e-9, id)
	}
}

func TestComputeBalances_NoExpenses(t *testing.T) {
	summaries, err := ComputeBalances(abc, nil)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	for i, s := range summaries {
		assert.Equal(t, abc[i].UserID, s.UserID, "summaries follow member order")
		assert.Equal(t, BalanceSummary{UserID: abc[i].UserID, Name: abc[i].Name}, s)
	}
	assert.Empty(t, PlanSettlements(summaries))
}

func TestComputeBalances_FourMembers(t *testing.T) {
	members := []Member{
		{UserID: "a", Name: "A"}, {UserID: "b", Name: "B"},
		{UserID: "c", Name: "C"}, {UserID: "d", Name: "D"},
	}
	expenses := []Expense{
		{ID: "e1", Amount: 100, PaidBy: "a", SplitType: SplitEqual},
		{ID: "e2", Amount: 40, PaidBy: "b", SplitType: SplitEqual},
	}

	summaries, err := ComputeBalances(members, expenses)
	require.NoError(t, err)

	for _, s := range summaries {
		assert.InDelta(t, 35.0, s.TotalOwed, 1e-9, s.UserID)
	}
	assert.InDelta(t, 65.0, summaryFor(t, summaries, "a").Balance, 1e-9)
	assert.InDelta(t, 5.0, summaryFor(t, summaries, "b").Balance, 1e-9)
	assert.InDelta(t, -35.0, summaryFor(t, summaries, "c").Balance, 1e-9)
	assert.InDelta(t, -35.0, summaryFor(t, summaries, "d").Balance, 1e-9)

	settlements := PlanSettlements(summaries)
	for _, s := range settlements {
		assert.Contains(t, []string{"c", "d"}, s.Payer)
		assert.Contains(t, []string{"a", "b"}, s.Receiver)
	}
	for id, bal := range ApplySettlements(summaries, settlements) {
		assert.Less(t, math.Abs(bal), Epsilon, id)
	}
}

func TestComputeBalances_CustomSplit(t *testing.T) {
	tests := []struct {
		name    string
		details []SplitDetail
		want    map[string]float64 // userID -> total owed
	}{
		{
			name:    "uneven shares",
			details: []SplitDetail{{UserID: "a", Amount: 10}, {UserID: "b", Amount: 20}, {UserID: "c", Amount: 30}},
			want:    map[string]float64{"a": 10, "b": 20, "c": 30},
		},
		{
			name:    "shares not covering every member are trusted",
			details: []SplitDetail{{UserID: "b", Amount: 25}},
			want:    map[string]float64{"a": 0, "b": 25, "c": 0},
		},
		{
			name:    "unknown member share is dropped",
			details: []SplitDetail{{UserID: "b", Amount: 30}, {UserID: "zed", Amount: 30}},
			want:    map[string]float64{"a": 0, "b": 30, "c": 0},
		},
		{
			name: "no details",
			want: map[string]float64{"a": 0, "b": 0, "c": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summaries, err := ComputeBalances(abc, []Expense{
				{ID: "e1", Amount: 60, PaidBy: "a", SplitType: SplitCustom, SplitDetails: tt.details},
			})
			require.NoError(t, err)
			for id, owed := range tt.want {
				s := summaryFor(t, summaries, id)
				assert.InDelta(t, owed, s.TotalOwed, 1e-9, id)
				assert.InDelta(t, s.TotalPaid-s.TotalOwed, s.Balance, 1e-9, id)
			}
			assert.InDelta(t, 60.0, summaryFor(t, summaries, "a").TotalPaid, 1e-9)
		})
	}
}

func TestComputeBalances_UnknownPayerDropped(t *testing.T) {
	summaries, err := ComputeBalances(abc, []Expense{
		{ID: "e1", Amount: 30, PaidBy: "ghost", SplitType: SplitEqual},
	})
	require.NoError(t, err)

	for _, s := range summaries {
		assert.Zero(t, s.TotalPaid)
		assert.InDelta(t, 10.0, s.TotalOwed, 1e-9)
	}
}

func TestComputeBalances_EqualIgnoresSplitDetails(t *testing.T) {
	summaries, err := ComputeBalances(abc, []Expense{
		{ID: "e1", Amount: 30, PaidBy: "a", SplitType: SplitEqual,
			SplitDetails: []SplitDetail{{UserID: "b", Amount: 30}}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, summaryFor(t, summaries, "b").TotalOwed, 1e-9)
}

func TestComputeBalances_ZeroSum(t *testing.T) {
	members := []Member{
		{UserID: "a"}, {UserID: "b"}, {UserID: "c"}, {UserID: "d"}, {UserID: "e"}, {UserID: "f"}, {UserID: "g"},
	}
	expenses := []Expense{
		{ID: "1", Amount: 100, PaidBy: "a", SplitType: SplitEqual},
		{ID: "2", Amount: 33.33, PaidBy: "c", SplitType: SplitEqual},
		{ID: "3", Amount: 17.01, PaidBy: "g", SplitType: SplitEqual},
		{ID: "4", Amount: 0.07, PaidBy: "b", SplitType: SplitEqual},
		{ID: "5", Amount: 50, PaidBy: "d", SplitType: SplitCustom, SplitDetails: []SplitDetail{
			{UserID: "a", Amount: 12.5}, {UserID: "e", Amount: 37.5},
		}},
		{ID: "6", Amount: 1000.99, PaidBy: "f", SplitType: SplitEqual},
	}

	summaries, err := ComputeBalances(members, expenses)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, Imbalance(summaries), ZeroSumTolerance)
}

func TestComputeBalances_Idempotent(t *testing.T) {
	expenses := []Expense{
		{ID: "1", Amount: 100, PaidBy: "a", SplitType: SplitEqual},
		{ID: "2", Amount: 12.34, PaidBy: "b", SplitType: SplitCustom, SplitDetails: []SplitDetail{
			{UserID: "a", Amount: 2.34}, {UserID: "c", Amount: 10},
		}},
	}

	first, err := ComputeBalances(abc, expenses)
	require.NoError(t, err)
	second, err := ComputeBalances(abc, expenses)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// inputs are untouched
	assert.Equal(t, 100.0, expenses[0].Amount)
	assert.Len(t, expenses[1].SplitDetails, 2)
}

func TestComputeBalances_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		members  []Member
		expenses []Expense
	}{
		{name: "empty member list", members: nil},
		{name: "empty user id", members: []Member{{UserID: ""}}},
		{name: "duplicate member", members: []Member{{UserID: "a"}, {UserID: "a"}}},
		{name: "zero amount", members: abc, expenses: []Expense{{ID: "1", Amount: 0, PaidBy: "a", SplitType: SplitEqual}}},
		{name: "negative amount", members: abc, expenses: []Expense{{ID: "1", Amount: -5, PaidBy: "a", SplitType: SplitEqual}}},
		{name: "NaN amount", members: abc, expenses: []Expense{{ID: "1", Amount: math.NaN(), PaidBy: "a", SplitType: SplitEqual}}},
		{name: "infinite amount", members: abc, expenses: []Expense{{ID: "1", Amount: math.Inf(1), PaidBy: "a", SplitType: SplitEqual}}},
		{name: "unknown split type", members: abc, expenses: []Expense{{ID: "1", Amount: 5, PaidBy: "a", SplitType: "percent"}}},
		{name: "negative custom share", members: abc, expenses: []Expense{{ID: "1", Amount: 5, PaidBy: "a", SplitType: SplitCustom,
			SplitDetails: []SplitDetail{{UserID: "b", Amount: -1}}}}},
		{name: "custom share without user", members: abc, expenses: []Expense{{ID: "1", Amount: 5, PaidBy: "a", SplitType: SplitCustom,
			SplitDetails: []SplitDetail{{Amount: 5}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summaries, err := ComputeBalances(tt.members, tt.expenses)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, summaries)
		})
	}
}

func TestIsSettled(t *testing.T) {
	assert.True(t, IsSettled(0))
	assert.True(t, IsSettled(0.0099))
	assert.True(t, IsSettled(-0.0099))
	assert.False(t, IsSettled(0.01))
	assert.False(t, IsSettled(-12))
}
