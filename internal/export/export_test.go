package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

func testReport(t *testing.T) Report {
	t.Helper()

	group := &models.Group{
		ID:   "g1",
		Name: "Ski Trip",
		Members: []models.Member{
			{UserID: "a", Name: "Alice"},
			{UserID: "b", Name: "Bob"},
			{UserID: "c", Name: "Charlie"},
		},
	}
	date := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC).Unix()
	expenses := []*models.Expense{
		{ID: "e1", Description: "Cabin", Amount: 90, Date: date, PaidBy: "a", SplitType: models.SplitTypeEqual},
		{ID: "e2", Description: "Lift passes", Amount: 30, Date: date, PaidBy: "b", SplitType: models.SplitTypeCustom,
			SplitDetails: []models.SplitDetail{{UserID: "b", Amount: 10}, {UserID: "c", Amount: 20}}},
	}

	summaries, err := calculator.ComputeBalances(group.LedgerMembers(), models.LedgerExpenses(expenses))
	require.NoError(t, err)

	return Report{Group: group, Expenses: expenses, Summaries: summaries, Plan: calculator.Plan(summaries)}
}

func TestBytes(t *testing.T) {
	content, err := Bytes(testReport(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, SettlementsSheet, ExpensesSheet}, f.GetSheetList())

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 6)
	assert.Equal(t, []string{"Group", "Ski Trip"}, summary[0])
	assert.Equal(t, []string{"Member", "Total Paid", "Total Owed", "Balance"}, summary[2])
	assert.Equal(t, []string{"Alice", "90", "30", "60"}, summary[3])
	assert.Equal(t, []string{"Charlie", "0", "50", "-50"}, summary[5])

	settlements, err := f.GetRows(SettlementsSheet)
	require.NoError(t, err)
	require.Len(t, settlements, 3)
	assert.Equal(t, []string{"Charlie", "Alice", "50", "$50.00"}, settlements[1])
	assert.Equal(t, []string{"Bob", "Alice", "10", "$10.00"}, settlements[2])

	expenses, err := f.GetRows(ExpensesSheet)
	require.NoError(t, err)
	require.Len(t, expenses, 3)
	assert.Equal(t, []string{"Date", "Description", "Paid By", "Amount", "Split", "Alice", "Bob", "Charlie"}, expenses[0])
	assert.Equal(t, []string{"2026-01-31", "Cabin", "Alice", "90", "equal", "30", "30", "30"}, expenses[1])
	assert.Equal(t, []string{"2026-01-31", "Lift passes", "Bob", "30", "custom", "0", "10", "20"}, expenses[2])
}

func TestBytes_Unmatched(t *testing.T) {
	r := testReport(t)
	r.Plan = calculator.Plan([]calculator.BalanceSummary{
		{UserID: "a", Name: "Alice", Balance: 50},
		{UserID: "b", Name: "Bob", Balance: -30},
	})

	content, err := Bytes(r)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SettlementsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Unmatched", "Balance"}, rows[3])
	assert.Equal(t, []string{"Alice", "20"}, rows[4])
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 3, 5, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "Ski_Trip_2026-03-05.xlsx", Filename("Ski Trip", at))
	assert.Equal(t, "Flat_42_2026-03-05.xlsx", Filename(" Flat #42 ", at))
	assert.Equal(t, "group_2026-03-05.xlsx", Filename("/../", at))
}
