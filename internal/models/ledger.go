package models

import "github.com/mmynk/splitledger/internal/calculator"

// LedgerMembers returns the group's members as balance engine input, in group order.
func (g *Group) LedgerMembers() []calculator.Member {
	members := make([]calculator.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = calculator.Member{UserID: m.UserID, Name: m.Name}
	}
	return members
}

// LedgerExpense converts the expense to balance engine input.
func (e *Expense) LedgerExpense() calculator.Expense {
	var details []calculator.SplitDetail
	if len(e.SplitDetails) > 0 {
		details = make([]calculator.SplitDetail, len(e.SplitDetails))
		for i, d := range e.SplitDetails {
			details[i] = calculator.SplitDetail{UserID: d.UserID, Amount: d.Amount}
		}
	}
	return calculator.Expense{
		ID:           e.ID,
		Amount:       e.Amount,
		PaidBy:       e.PaidBy,
		SplitType:    calculator.SplitType(e.SplitType),
		SplitDetails: details,
	}
}

// LedgerExpenses converts a group's expense list to balance engine input.
func LedgerExpenses(expenses []*Expense) []calculator.Expense {
	out := make([]calculator.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = e.LedgerExpense()
	}
	return out
}
