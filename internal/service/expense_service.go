package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/export"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// ExpenseService implements the Connect ExpenseService: recording expenses
// and turning a group's ledger into balances and a settlement plan.
type ExpenseService struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewExpenseService creates a new ExpenseService. m may be nil.
func NewExpenseService(store storage.Store, logger *slog.Logger, m *metrics.Metrics) *ExpenseService {
	return &ExpenseService{
		store:   store,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// AddExpense validates and records an expense in a group.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("AddExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"split_type", req.Msg.SplitType,
	)

	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, fail(s.logger, "AddExpense", err, "group_id", req.Msg.GroupID)
	}

	expense, err := s.buildExpense(group, userID, req.Msg)
	if err != nil {
		return nil, fail(s.logger, "AddExpense", err, "group_id", group.ID)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fail(s.logger, "AddExpense", err, "group_id", group.ID)
	}

	s.logger.Info("Expense added", "group_id", group.ID, "expense_id", expense.ID)
	return connect.NewResponse(&api.AddExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// buildExpense turns a request into a validated expense of group.
func (s *ExpenseService) buildExpense(group *models.Group, userID string, msg *api.AddExpenseRequest) (*models.Expense, error) {
	description := strings.TrimSpace(msg.Description)
	if description == "" {
		return nil, invalidArgument("description is required")
	}
	if math.IsNaN(msg.Amount) || math.IsInf(msg.Amount, 0) || msg.Amount <= 0 {
		return nil, invalidArgument("amount must be a positive number")
	}

	paidBy := msg.PaidBy
	if paidBy == "" {
		paidBy = userID
	}
	if _, ok := group.FindMember(paidBy); !ok {
		return nil, invalidArgument("payer %q is not a member of the group", paidBy)
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		Description: description,
		Amount:      msg.Amount,
		Date:        msg.Date,
		PaidBy:      paidBy,
		SplitType:   msg.SplitType,
		CreatedBy:   userID,
	}
	if expense.SplitType == "" {
		expense.SplitType = models.SplitTypeEqual
	}

	switch expense.SplitType {
	case models.SplitTypeEqual:
		// every member shares equally; details are not stored
	case models.SplitTypeCustom:
		details, err := customSplit(group, msg)
		if err != nil {
			return nil, err
		}
		expense.SplitDetails = details

		var sum float64
		for _, d := range details {
			sum += d.Amount
		}
		if math.Abs(sum-expense.Amount) >= calculator.Epsilon {
			s.logger.Warn("Custom split does not add up to the amount",
				"group_id", group.ID,
				"amount", expense.Amount,
				"split_total", sum,
			)
		}
	default:
		return nil, invalidArgument("unknown split type %q", expense.SplitType)
	}

	if err := calculator.Validate(group.LedgerMembers(), []calculator.Expense{expense.LedgerExpense()}); err != nil {
		return nil, err
	}
	return expense, nil
}

// customSplit returns the split details of a custom expense, derived from
// line items when the request has them.
func customSplit(group *models.Group, msg *api.AddExpenseRequest) ([]models.SplitDetail, error) {
	if len(msg.Items) > 0 {
		return itemizedSplit(group, msg)
	}
	if len(msg.SplitDetails) == 0 {
		return nil, invalidArgument("custom split requires split details or items")
	}

	seen := make(map[string]bool, len(msg.SplitDetails))
	details := make([]models.SplitDetail, 0, len(msg.SplitDetails))
	for _, d := range msg.SplitDetails {
		if d == nil {
			continue
		}
		if _, ok := group.FindMember(d.UserID); !ok {
			return nil, invalidArgument("split user %q is not a member of the group", d.UserID)
		}
		if seen[d.UserID] {
			return nil, invalidArgument("split user %q appears more than once", d.UserID)
		}
		seen[d.UserID] = true
		details = append(details, models.SplitDetail{UserID: d.UserID, Amount: d.Amount})
	}
	return details, nil
}

// itemizedSplit assigns each item to its users and spreads tax and tip in
// proportion. Members with no share are left out of the details.
func itemizedSplit(group *models.Group, msg *api.AddExpenseRequest) ([]models.SplitDetail, error) {
	items := make([]calculator.Item, 0, len(msg.Items))
	var subtotal float64
	for _, item := range msg.Items {
		if item == nil {
			continue
		}
		if math.IsNaN(item.Amount) || math.IsInf(item.Amount, 0) || item.Amount < 0 {
			return nil, invalidArgument("item %q amount must be non-negative", item.Description)
		}
		for _, id := range item.UserIDs {
			if _, ok := group.FindMember(id); !ok {
				return nil, invalidArgument("item %q user %q is not a member of the group", item.Description, id)
			}
		}
		items = append(items, calculator.Item{
			Description: item.Description,
			Amount:      item.Amount,
			AssignedTo:  item.UserIDs,
		})
		subtotal += item.Amount
	}
	if msg.Subtotal > 0 {
		subtotal = msg.Subtotal
	}

	participants := make([]string, len(group.Members))
	for i, m := range group.Members {
		participants[i] = m.UserID
	}

	shares, err := calculator.ItemizedShares(items, msg.Amount, subtotal, participants)
	if err != nil {
		return nil, err
	}

	var details []models.SplitDetail
	for _, share := range shares {
		if share.Amount > 0 {
			details = append(details, models.SplitDetail{UserID: share.UserID, Amount: share.Amount})
		}
	}
	if len(details) == 0 {
		return nil, invalidArgument("items are not assigned to anyone")
	}
	return details, nil
}

// ListExpenses returns a group's expenses, oldest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	if _, _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, fail(s.logger, "ListExpenses", err, "group_id", req.Msg.GroupID)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, fail(s.logger, "ListExpenses", err, "group_id", req.Msg.GroupID)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}

	s.logger.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(out))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// DeleteExpense removes an expense from a group the caller belongs to.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if req.Msg.ExpenseID == "" {
		return nil, invalidArgument("expense id is required")
	}
	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, fail(s.logger, "DeleteExpense", err, "expense_id", req.Msg.ExpenseID)
	}
	if _, _, err := memberGroup(ctx, s.store, expense.GroupID, userID); err != nil {
		return nil, fail(s.logger, "DeleteExpense", err, "expense_id", expense.ID)
	}
	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		return nil, fail(s.logger, "DeleteExpense", err, "expense_id", expense.ID)
	}

	s.logger.Info("Expense deleted", "expense_id", expense.ID, "group_id", expense.GroupID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// GetGroupBalances computes every member's balance from the group's full
// expense list and plans the transfers that settle them.
func (s *ExpenseService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	report, err := s.ledger(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, fail(s.logger, "GetGroupBalances", err, "group_id", req.Msg.GroupID)
	}

	s.logger.Info("Balances calculated",
		"group_id", report.Group.ID,
		"expenses", len(report.Expenses),
		"settlements", len(report.Plan.Settlements),
	)
	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Summaries:   toAPISummaries(report.Summaries),
		Settlements: toAPISettlements(report.Plan.Settlements),
		Unmatched:   toAPIResiduals(report.Plan.Unmatched),
	}), nil
}

// ExportGroup renders the group's ledger as an .xlsx workbook.
func (s *ExpenseService) ExportGroup(ctx context.Context, req *connect.Request[api.ExportGroupRequest]) (*connect.Response[api.ExportGroupResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ExportGroup request received", "group_id", req.Msg.GroupID)

	report, err := s.ledger(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, fail(s.logger, "ExportGroup", err, "group_id", req.Msg.GroupID)
	}

	content, err := export.Bytes(*report)
	if err != nil {
		return nil, fail(s.logger, "ExportGroup", err, "group_id", report.Group.ID)
	}

	return connect.NewResponse(&api.ExportGroupResponse{
		Filename: export.Filename(report.Group.Name, s.now()),
		Content:  content,
	}), nil
}

// ledger loads a group and all its expenses and runs both balance stages.
func (s *ExpenseService) ledger(ctx context.Context, groupID, userID string) (*export.Report, error) {
	group, _, err := memberGroup(ctx, s.store, groupID, userID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	summaries, err := calculator.ComputeBalances(group.LedgerMembers(), models.LedgerExpenses(expenses))
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidInput) {
			// stored data should always be valid
			return nil, fmt.Errorf("group %s has an invalid ledger: %v", group.ID, err)
		}
		return nil, err
	}

	plan := calculator.Plan(summaries)
	s.metrics.ObservePlan(len(plan.Settlements), len(plan.Unmatched))
	if len(plan.Unmatched) > 0 {
		s.logger.Warn("Settlement plan left balances unmatched",
			"group_id", group.ID,
			"unmatched", len(plan.Unmatched),
			"imbalance", calculator.Imbalance(summaries),
		)
	}

	return &export.Report{Group: group, Expenses: expenses, Summaries: summaries, Plan: plan}, nil
}
