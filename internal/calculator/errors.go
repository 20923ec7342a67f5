package calculator

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned (wrapped) when members or expenses cannot be
// used for a calculation. It is always raised before any computation starts.
var ErrInvalidInput = errors.New("invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Validate checks the inputs of ComputeBalances.
//
// References to unknown members (payer or split entries) are NOT rejected:
// their contribution is dropped during the calculation instead.
func Validate(members []Member, expenses []Expense) error {
	if len(members) == 0 {
		return invalidf("member list cannot be empty")
	}

	seen := make(map[string]bool, len(members))
	for i, m := range members {
		if m.UserID == "" {
			return invalidf("member %d has an empty user id", i+1)
		}
		if seen[m.UserID] {
			return invalidf("duplicate member %q", m.UserID)
		}
		seen[m.UserID] = true
	}

	for _, e := range expenses {
		if err := validateExpense(e); err != nil {
			return err
		}
	}
	return nil
}

func validateExpense(e Expense) error {
	if !isFinite(e.Amount) || e.Amount <= 0 {
		return invalidf("expense %q amount must be positive, got %v", e.ID, e.Amount)
	}

	switch e.SplitType {
	case SplitEqual:
		return nil
	case SplitCustom:
		for i, d := range e.SplitDetails {
			if d.UserID == "" {
				return invalidf("expense %q split entry %d has an empty user id", e.ID, i+1)
			}
			if !isFinite(d.Amount) || d.Amount < 0 {
				return invalidf("expense %q split entry for %q must be non-negative, got %v", e.ID, d.UserID, d.Amount)
			}
		}
		return nil
	default:
		return invalidf("expense %q has unknown split type %q", e.ID, e.SplitType)
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
