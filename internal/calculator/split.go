package calculator

import (
	"fmt"
)

// Item represents a single line item of an itemized expense
type Item struct {
	Description string
	Amount      float64
	AssignedTo  []string
}

// ItemizedShares derives custom split details from line items, including proportional tax.
// Based on the algorithm: person_total = person_subtotal × (total / subtotal)
//
// Items without assignees are skipped; with no items at all, total is divided
// equally. Shares come back in participant order. This only prepares input for
// a custom split, ComputeBalances never calls it.
func ItemizedShares(items []Item, total float64, subtotal float64, participants []string) ([]SplitDetail, error) {
	if subtotal == 0 {
		return nil, fmt.Errorf("%w: subtotal cannot be zero", ErrInvalidInput)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", ErrInvalidInput)
	}

	shares := make([]SplitDetail, len(participants))
	index := make(map[string]int, len(participants))
	for i, p := range participants {
		shares[i] = SplitDetail{UserID: p}
		index[p] = i
	}

	// If no items, split total equally among all participants
	if len(items) == 0 {
		perPerson := total / float64(len(participants))
		for i := range shares {
			shares[i].Amount = perPerson
		}
		return shares, nil
	}

	for _, item := range items {
		if len(item.AssignedTo) == 0 {
			continue
		}

		perPerson := item.Amount / float64(len(item.AssignedTo))
		for _, person := range item.AssignedTo {
			if i, exists := index[person]; exists {
				shares[i].Amount += perPerson
			}
		}
	}

	// Scale subtotals up by the tax/fee ratio
	ratio := total / subtotal
	for i := range shares {
		shares[i].Amount *= ratio
	}

	return shares, nil
}
