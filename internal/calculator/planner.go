package calculator

import (
	"fmt"
	"sort"

	"github.com/uilacceb/splitter/internal/money"
)

// Mode selects how the planner derives each person's net position.
type Mode int

const (
	// ModePairwise sums what each person is owed minus what they owe.
	ModePairwise Mode = iota
	// ModeContribution treats every obligation as a contribution into a shared
	// pool and compares each contributor against an equal share of the pool.
	ModeContribution
)

func (m Mode) String() string {
	switch m {
	case ModeContribution:
		return "contribution"
	default:
		return "pairwise"
	}
}

// ParseMode maps "pairwise" and "contribution" to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "pairwise":
		return ModePairwise, true
	case "contribution", "pool":
		return ModeContribution, true
	}
	return ModePairwise, false
}

// DetectMode picks contribution mode when every obligation flows into the
// same sink and that sink never owes anything. Anything else is pairwise.
//
// Callers must not mix pool contributions and pairwise debts in one input;
// the shape of the input alone decides the mode.
func DetectMode(obligations []Obligation) Mode {
	if len(obligations) == 0 {
		return ModePairwise
	}

	sink := obligations[0].To
	contributors := make(map[string]bool)
	for _, o := range obligations {
		if o.To != sink {
			return ModePairwise
		}
		contributors[o.From] = true
	}
	if contributors[sink] {
		return ModePairwise
	}
	return ModeContribution
}

// Plan returns the fewest payments that clear the balances implied by
// obligations, choosing the mode with DetectMode.
func Plan(obligations []Obligation) ([]Obligation, error) {
	return PlanWithMode(DetectMode(obligations), obligations)
}

// PlanWithMode computes a minimal settlement plan in the given mode.
//
// Algorithm:
// - Derive every person's signed position (see Mode)
// - Split people into creditors (owed money) and debtors (owe money)
// - Sort both by amount, largest first
// - Greedy: the largest debtor pays the largest creditor min(owed, due),
//   advancing whichever side reaches zero
//
// Each payment settles at least one party, so k participants with a nonzero
// position need at most k-1 payments. The result is advisory and never
// persisted. Sums that overflow int64 return an error wrapping
// money.ErrOutOfRange.
func PlanWithMode(mode Mode, obligations []Obligation) ([]Obligation, error) {
	var (
		positions map[string]money.Money
		err       error
	)
	if mode == ModeContribution {
		positions, err = contributionPositions(obligations)
	} else {
		positions, err = Positions(obligations)
	}
	if err != nil {
		return nil, err
	}

	type party struct {
		id        string
		remaining money.Money
	}

	var creditors, debtors []party
	for id, pos := range positions {
		if pos > 0 {
			creditors = append(creditors, party{id, pos})
		} else if pos < 0 {
			owed, err := money.Sub(0, pos)
			if err != nil {
				return nil, fmt.Errorf("position of %s: %w", id, err)
			}
			debtors = append(debtors, party{id, owed})
		}
	}
	if len(creditors) == 0 || len(debtors) == 0 {
		return nil, nil
	}

	byAmount := func(parties []party) func(i, j int) bool {
		return func(i, j int) bool {
			if parties[i].remaining != parties[j].remaining {
				return parties[i].remaining > parties[j].remaining
			}
			return parties[i].id < parties[j].id
		}
	}
	sort.Slice(creditors, byAmount(creditors))
	sort.Slice(debtors, byAmount(debtors))

	var payments []Obligation
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := min(debtors[i].remaining, creditors[j].remaining)
		payments = append(payments, Obligation{
			From:   debtors[i].id,
			To:     creditors[j].id,
			Amount: amount,
		})

		debtors[i].remaining -= amount
		creditors[j].remaining -= amount

		if debtors[i].remaining == 0 {
			i++
		}
		if creditors[j].remaining == 0 {
			j++
		}
	}

	return payments, nil
}

// contributionPositions compares what each contributor put into the pool
// against an equal share of the pool total. Shares come from money.Split, so
// the positions always sum to zero.
func contributionPositions(obligations []Obligation) (map[string]money.Money, error) {
	contributions := make(map[string]money.Money)
	var total money.Money
	for _, o := range obligations {
		var err error
		if contributions[o.From], err = money.Add(contributions[o.From], o.Amount); err != nil {
			return nil, fmt.Errorf("contribution of %s: %w", o.From, err)
		}
		if total, err = money.Add(total, o.Amount); err != nil {
			return nil, fmt.Errorf("pool total: %w", err)
		}
	}

	ids := make([]string, 0, len(contributions))
	for id := range contributions {
		ids = append(ids, id)
	}

	positions := make(map[string]money.Money, len(ids))
	shares, err := money.Split(total, ids)
	if err != nil {
		// Only reachable for a negative pool, which has no fair share to compare.
		return positions, nil
	}
	for _, id := range ids {
		if positions[id], err = money.Sub(contributions[id], shares[id]); err != nil {
			return nil, fmt.Errorf("position of %s: %w", id, err)
		}
	}
	return positions, nil
}
