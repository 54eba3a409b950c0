package service

import (
	"github.com/uilacceb/splitter/internal/calculator"
	"github.com/uilacceb/splitter/internal/models"
	"github.com/uilacceb/splitter/pkg/api"
)

func expenseToAPI(e *models.Expense) api.Expense {
	return api.Expense{
		ID:          e.ID,
		EventID:     e.EventID,
		Description: e.Description,
		PaidBy:      e.PaidBy,
		Amount:      e.Amount,
		SplitWith:   e.SplitWith,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func settlementToAPI(s *models.Settlement) api.Settlement {
	return api.Settlement{
		ID:      s.ID,
		EventID: s.EventID,
		From:    s.From,
		To:      s.To,
		Amount:  s.Amount,
		Settled: s.Settled,
	}
}

func settlementsToAPI(rows []*models.Settlement) []api.Settlement {
	out := make([]api.Settlement, 0, len(rows))
	for _, row := range rows {
		out = append(out, settlementToAPI(row))
	}
	return out
}

func obligationsToAPI(obligations []calculator.Obligation) []api.Obligation {
	out := make([]api.Obligation, 0, len(obligations))
	for _, o := range obligations {
		out = append(out, api.Obligation{From: o.From, To: o.To, Amount: o.Amount})
	}
	return out
}

func obligationsFromAPI(obligations []api.Obligation) []calculator.Obligation {
	out := make([]calculator.Obligation, 0, len(obligations))
	for _, o := range obligations {
		out = append(out, calculator.Obligation{From: o.From, To: o.To, Amount: o.Amount})
	}
	return out
}
