package calculator

import "math"

const (
	// Epsilon is the threshold below which a balance counts as settled.
	// It absorbs floating point residue from repeated division.
	Epsilon = 0.01

	// ZeroSumTolerance bounds |sum(balance)| for a consistent set of summaries.
	ZeroSumTolerance = 1e-9
)

// SplitType selects how an expense is divided among the group.
type SplitType string

const (
	SplitEqual  SplitType = "equal"
	SplitCustom SplitType = "custom"
)

// Member is a participant of the group being settled.
type Member struct {
	UserID string
	Name   string
}

// SplitDetail is one member's explicit share of a custom-split expense.
type SplitDetail struct {
	UserID string
	Amount float64
}

// Expense represents an expense with the minimal information needed for balance calculations.
type Expense struct {
	ID           string
	Amount       float64
	PaidBy       string
	SplitType    SplitType
	SplitDetails []SplitDetail // only read for SplitCustom
}

// BalanceSummary represents the balance information for one group member.
type BalanceSummary struct {
	UserID    string
	Name      string
	TotalPaid float64 // Sum of expenses this member paid
	TotalOwed float64 // Sum of this member's shares
	Balance   float64 // Positive = owed money, Negative = owes money
}

// ComputeBalances folds the expense list into one summary per member, in
// member order.
//
// Algorithm:
//   - the payer is credited the full amount of each expense
//   - equal split: amount / len(members) is owed by every member, payer included
//   - custom split: each split entry is owed by its member, trusted as-is
//   - balance = total_paid - total_owed
//
// Contributions to user ids that are not in members are dropped. Neither
// input is modified and nothing is rounded.
func ComputeBalances(members []Member, expenses []Expense) ([]BalanceSummary, error) {
	if err := Validate(members, expenses); err != nil {
		return nil, err
	}

	summaries := make([]BalanceSummary, len(members))
	index := make(map[string]int, len(members))
	for i, m := range members {
		summaries[i] = BalanceSummary{UserID: m.UserID, Name: m.Name}
		index[m.UserID] = i
	}

	memberCount := float64(len(members))
	for _, expense := range expenses {
		if i, ok := index[expense.PaidBy]; ok {
			summaries[i].TotalPaid += expense.Amount
		}

		switch expense.SplitType {
		case SplitEqual:
			share := expense.Amount / memberCount
			for i := range summaries {
				summaries[i].TotalOwed += share
			}
		case SplitCustom:
			for _, detail := range expense.SplitDetails {
				if i, ok := index[detail.UserID]; ok {
					summaries[i].TotalOwed += detail.Amount
				}
			}
		}
	}

	for i := range summaries {
		summaries[i].Balance = summaries[i].TotalPaid - summaries[i].TotalOwed
	}

	return summaries, nil
}

// Imbalance returns the sum of all balances. For summaries computed from
// expenses that only reference known members it is within ZeroSumTolerance of zero.
func Imbalance(summaries []BalanceSummary) float64 {
	var sum float64
	for _, s := range summaries {
		sum += s.Balance
	}
	return sum
}

// IsSettled reports whether a balance is within Epsilon of zero.
func IsSettled(balance float64) bool {
	return math.Abs(balance) < Epsilon
}
