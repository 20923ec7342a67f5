package models

// Split types accepted for an expense.
const (
	SplitTypeEqual  = "equal"
	SplitTypeCustom = "custom"
)

// Expense represents one recorded shared cost within a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is what the money was spent on (e.g., "Groceries").
	Description string

	// Amount is the positive total paid.
	Amount float64

	// Date is the Unix timestamp of when the expense happened.
	Date int64

	// PaidBy is the member user ID who paid the full amount.
	PaidBy string

	// SplitType is SplitTypeEqual or SplitTypeCustom.
	SplitType string

	// SplitDetails holds the per-member shares of a custom split, in the
	// order they were supplied. Empty for equal splits.
	SplitDetails []SplitDetail

	// CreatedBy is the user ID who recorded this expense.
	CreatedBy string

	CreatedAt int64
}

// SplitDetail is one member's share of a custom-split expense.
type SplitDetail struct {
	UserID string
	Amount float64
}
