package calculator

import (
	"cmp"
	"math"
	"slices"
)

// Settlement is a recommended transfer from a debtor to a creditor.
type Settlement struct {
	Payer        string // Member who owes
	PayerName    string
	Receiver     string // Member who is owed
	ReceiverName string
	Amount       float64
}

// Residual is balance the planner could not match. It only appears when
// the summaries do not sum to zero.
type Residual struct {
	UserID  string
	Name    string
	Balance float64
}

// SettlementPlan is the output of Plan.
type SettlementPlan struct {
	Settlements []Settlement
	Unmatched   []Residual
}

// PlanSettlements returns the transfers that bring every balance to within
// Epsilon of zero. See Plan.
func PlanSettlements(summaries []BalanceSummary) []Settlement {
	return Plan(summaries).Settlements
}

// Plan matches debtors against creditors greedily, largest first:
// the most negative debtor pays the largest creditor min(|debt|, credit),
// and whichever side drops under Epsilon leaves its list. It needs at most
// creditors+debtors-1 transfers, which is not always the global minimum.
//
// If the summaries violate the zero-sum invariant, whatever is left on the
// longer side is reported in Unmatched instead of being dropped silently.
func Plan(summaries []BalanceSummary) SettlementPlan {
	var creditors, debtors []BalanceSummary
	for _, s := range summaries {
		if s.Balance > 0 {
			creditors = append(creditors, s)
		} else if s.Balance < 0 {
			debtors = append(debtors, s)
		}
	}

	slices.SortStableFunc(creditors, func(a, b BalanceSummary) int {
		return cmp.Compare(b.Balance, a.Balance)
	})
	slices.SortStableFunc(debtors, func(a, b BalanceSummary) int {
		return cmp.Compare(a.Balance, b.Balance)
	})

	plan := SettlementPlan{Settlements: []Settlement{}}
	for len(debtors) > 0 && len(creditors) > 0 {
		debtor := &debtors[0]
		creditor := &creditors[0]

		amount := math.Min(-debtor.Balance, creditor.Balance)
		if amount > 0 {
			plan.Settlements = append(plan.Settlements, Settlement{
				Payer:        debtor.UserID,
				PayerName:    debtor.Name,
				Receiver:     creditor.UserID,
				ReceiverName: creditor.Name,
				Amount:       amount,
			})
			debtor.Balance += amount
			creditor.Balance -= amount
		}

		if IsSettled(debtor.Balance) {
			debtors = debtors[1:]
		}
		if IsSettled(creditor.Balance) {
			creditors = creditors[1:]
		}
	}

	for _, rest := range [][]BalanceSummary{debtors, creditors} {
		for _, s := range rest {
			if !IsSettled(s.Balance) {
				plan.Unmatched = append(plan.Unmatched, Residual{
					UserID:  s.UserID,
					Name:    s.Name,
					Balance: s.Balance,
				})
			}
		}
	}

	return plan
}

// ApplySettlements returns each member's balance after every transfer has
// been paid: the payer's debt shrinks and the receiver's credit shrinks.
func ApplySettlements(summaries []BalanceSummary, settlements []Settlement) map[string]float64 {
	remaining := make(map[string]float64, len(summaries))
	for _, s := range summaries {
		remaining[s.UserID] += s.Balance
	}
	for _, s := range settlements {
		remaining[s.Payer] += s.Amount
		remaining[s.Receiver] -= s.Amount
	}
	return remaining
}
