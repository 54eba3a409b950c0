package calculator

import (
	"fmt"

	"github.com/uilacceb/splitter/internal/money"
)

// ExpenseForBalance represents an expense with the minimal information needed
// for balance calculations.
type ExpenseForBalance struct {
	PayerID      string
	Amount       money.Money
	Participants []string
}

// CalculateShares computes how much each participant owes for one expense.
// Shares are whole cents and always add up to the expense amount; see money.Split
// for how leftover cents are assigned.
func CalculateShares(expense ExpenseForBalance) (map[string]money.Money, error) {
	if len(expense.Participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	if expense.Amount < 0 {
		return nil, fmt.Errorf("amount cannot be negative: %s", expense.Amount)
	}
	return money.Split(expense.Amount, expense.Participants)
}

// RawObligations turns expenses into directed obligations from each
// non-paying participant to the payer. The payer's own share is never an
// obligation. Zero-amount expenses produce nothing.
func RawObligations(expenses []ExpenseForBalance) ([]Obligation, error) {
	var obligations []Obligation
	for i, expense := range expenses {
		shares, err := CalculateShares(expense)
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", i, err)
		}

		for participant, share := range shares {
			if participant == expense.PayerID || share == 0 {
				continue
			}
			obligations = append(obligations, Obligation{
				From:   participant,
				To:     expense.PayerID,
				Amount: share,
			})
		}
	}
	sortObligations(obligations)
	return obligations, nil
}
