package service

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIMember(m *models.Member) *api.Member {
	return &api.Member{
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		Phone:    m.Phone,
		IsAdmin:  m.IsAdmin,
		JoinedAt: m.JoinedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	members := make([]*api.Member, len(g.Members))
	for i := range g.Members {
		members[i] = toAPIMember(&g.Members[i])
	}
	return &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Members:     members,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	out := &api.Expense{
		ID:            e.ID,
		GroupID:       e.GroupID,
		Description:   e.Description,
		Amount:        e.Amount,
		DisplayAmount: calculator.FormatCurrency(e.Amount),
		Date:          e.Date,
		PaidBy:        e.PaidBy,
		SplitType:     e.SplitType,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
	}
	for _, d := range e.SplitDetails {
		out.SplitDetails = append(out.SplitDetails, &api.SplitDetail{UserID: d.UserID, Amount: d.Amount})
	}
	return out
}

func toAPISummaries(summaries []calculator.BalanceSummary) []*api.BalanceSummary {
	out := make([]*api.BalanceSummary, len(summaries))
	for i, s := range summaries {
		out[i] = &api.BalanceSummary{
			UserID:         s.UserID,
			Name:           s.Name,
			TotalPaid:      s.TotalPaid,
			TotalOwed:      s.TotalOwed,
			Balance:        s.Balance,
			DisplayBalance: calculator.FormatCurrency(s.Balance),
		}
	}
	return out
}

func toAPISettlements(settlements []calculator.Settlement) []*api.Settlement {
	out := make([]*api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = &api.Settlement{
			Payer:         s.Payer,
			PayerName:     s.PayerName,
			Receiver:      s.Receiver,
			ReceiverName:  s.ReceiverName,
			Amount:        s.Amount,
			DisplayAmount: calculator.FormatCurrency(s.Amount),
		}
	}
	return out
}

func toAPIResiduals(residuals []calculator.Residual) []*api.Residual {
	if len(residuals) == 0 {
		return nil
	}
	out := make([]*api.Residual, len(residuals))
	for i, r := range residuals {
		out[i] = &api.Residual{UserID: r.UserID, Name: r.Name, Balance: r.Balance}
	}
	return out
}
