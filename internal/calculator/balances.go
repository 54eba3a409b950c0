package calculator

import (
	"fmt"
	"sort"

	"github.com/uilacceb/splitter/internal/money"
)

// Obligation represents a debt from one person to another.
type Obligation struct {
	From   string      // Person who owes
	To     string      // Person who is owed
	Amount money.Money // Strictly positive in every result
}

type pair struct {
	from, to string
}

// Net collapses obligations into at most one directed obligation per pair of
// people, cancelling mutual debt.
//
// Amounts are summed per ordered (From, To) pair; for every unordered pair the
// difference is emitted from the net debtor to the net creditor. Pairs that
// cancel out are absent. The result is sorted by (From, To) and therefore does
// not depend on input order. A per-pair sum that overflows int64 returns an
// error wrapping money.ErrOutOfRange.
func Net(obligations []Obligation) ([]Obligation, error) {
	sums := make(map[pair]money.Money)
	for _, o := range obligations {
		key := pair{o.From, o.To}
		sum, err := money.Add(sums[key], o.Amount)
		if err != nil {
			return nil, fmt.Errorf("net %s->%s: %w", o.From, o.To, err)
		}
		sums[key] = sum
	}

	var result []Obligation
	seen := make(map[pair]bool, len(sums))
	for key, forward := range sums {
		if seen[key] {
			continue
		}
		reverse := pair{key.to, key.from}
		backward := sums[reverse]
		seen[key] = true
		seen[reverse] = true

		diff, err := money.Sub(forward, backward)
		if err != nil {
			return nil, fmt.Errorf("net %s<->%s: %w", key.from, key.to, err)
		}
		switch {
		case diff > 0:
			result = append(result, Obligation{From: key.from, To: key.to, Amount: diff})
		case diff < 0:
			owed, err := money.Sub(0, diff)
			if err != nil {
				return nil, fmt.Errorf("net %s<->%s: %w", key.from, key.to, err)
			}
			result = append(result, Obligation{From: key.to, To: key.from, Amount: owed})
		}
	}

	sortObligations(result)
	return result, nil
}

// Positions returns each person's signed net position: what they are owed
// minus what they owe. Netting never changes positions.
func Positions(obligations []Obligation) (map[string]money.Money, error) {
	positions := make(map[string]money.Money)
	for _, o := range obligations {
		owes, err := money.Sub(positions[o.From], o.Amount)
		if err != nil {
			return nil, fmt.Errorf("position of %s: %w", o.From, err)
		}
		positions[o.From] = owes

		owed, err := money.Add(positions[o.To], o.Amount)
		if err != nil {
			return nil, fmt.Errorf("position of %s: %w", o.To, err)
		}
		positions[o.To] = owed
	}
	return positions, nil
}

// Outstanding computes what is still owed after settled payments.
//
// Algorithm:
// - Raw obligations: every non-paying participant owes the payer their share
// - Net the raw obligations per pair
// - Each settled payment reduces the matching directed pair only
// - Balances at or below zero are dropped
func Outstanding(expenses []ExpenseForBalance, settled []Obligation) ([]Obligation, error) {
	raw, err := RawObligations(expenses)
	if err != nil {
		return nil, err
	}

	netted, err := Net(raw)
	if err != nil {
		return nil, err
	}
	balances := make(map[pair]money.Money, len(netted))
	for _, o := range netted {
		balances[pair{o.From, o.To}] = o.Amount
	}

	for _, s := range settled {
		key := pair{s.From, s.To}
		balance, ok := balances[key]
		if !ok {
			continue
		}
		if balances[key], err = money.Sub(balance, s.Amount); err != nil {
			return nil, fmt.Errorf("settled %s->%s: %w", s.From, s.To, err)
		}
	}

	var result []Obligation
	for key, amount := range balances {
		if amount <= 0 {
			continue
		}
		result = append(result, Obligation{From: key.from, To: key.to, Amount: amount})
	}

	sortObligations(result)
	return result, nil
}

// Total sums the amounts of the given obligations.
func Total(obligations []Obligation) (money.Money, error) {
	var total money.Money
	for _, o := range obligations {
		var err error
		if total, err = money.Add(total, o.Amount); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func sortObligations(obligations []Obligation) {
	sort.Slice(obligations, func(i, j int) bool {
		if obligations[i].From != obligations[j].From {
			return obligations[i].From < obligations[j].From
		}
		return obligations[i].To < obligations[j].To
	})
}
