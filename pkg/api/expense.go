package api

// SplitDetail is one member's share of a custom split.
type SplitDetail struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
}

// ExpenseItem is a line item used to derive custom split details.
type ExpenseItem struct {
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	UserIDs     []string `json:"userIds"`
}

type Expense struct {
	ID            string         `json:"id"`
	GroupID       string         `json:"groupId"`
	Description   string         `json:"description"`
	Amount        float64        `json:"amount"`
	DisplayAmount string         `json:"displayAmount"`
	Date          int64          `json:"date"`
	PaidBy        string         `json:"paidBy"`
	SplitType     string         `json:"splitType"`
	SplitDetails  []*SplitDetail `json:"splitDetails,omitempty"`
	CreatedBy     string         `json:"createdBy"`
	CreatedAt     int64          `json:"createdAt"`
}

// AddExpenseRequest records a new expense.
//
// PaidBy defaults to the caller. For SplitType "custom" either SplitDetails
// or Items must be given; Items are converted to split details with tax
// distributed by Amount/Subtotal (Subtotal defaults to the items' sum).
type AddExpenseRequest struct {
	GroupID      string         `json:"groupId"`
	Description  string         `json:"description"`
	Amount       float64        `json:"amount"`
	Date         int64          `json:"date,omitempty"`
	PaidBy       string         `json:"paidBy,omitempty"`
	SplitType    string         `json:"splitType"`
	SplitDetails []*SplitDetail `json:"splitDetails,omitempty"`
	Items        []*ExpenseItem `json:"items,omitempty"`
	Subtotal     float64        `json:"subtotal,omitempty"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

// BalanceSummary is one member's net position in a group.
type BalanceSummary struct {
	UserID         string  `json:"userId"`
	Name           string  `json:"name"`
	TotalPaid      float64 `json:"totalPaid"`
	TotalOwed      float64 `json:"totalOwed"`
	Balance        float64 `json:"balance"`
	DisplayBalance string  `json:"displayBalance"`
}

// Settlement is one recommended transfer.
type Settlement struct {
	Payer         string  `json:"payer"`
	PayerName     string  `json:"payerName"`
	Receiver      string  `json:"receiver"`
	ReceiverName  string  `json:"receiverName"`
	Amount        float64 `json:"amount"`
	DisplayAmount string  `json:"displayAmount"`
}

// Residual is balance the settlement plan could not match.
type Residual struct {
	UserID  string  `json:"userId"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Summaries   []*BalanceSummary `json:"summaries"`
	Settlements []*Settlement     `json:"settlements"`
	Unmatched   []*Residual       `json:"unmatched,omitempty"`
}

type ExportGroupRequest struct {
	GroupID string `json:"groupId"`
}

// ExportGroupResponse carries an .xlsx workbook (base64 in JSON).
type ExportGroupResponse struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}
