package calculator

import (
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/uilacceb/splitter/internal/money"
)

func ob(from, to, amount string) Obligation {
	return Obligation{From: from, To: to, Amount: money.MustParse(amount)}
}

func mustNet(t *testing.T, obligations []Obligation) []Obligation {
	t.Helper()
	netted, err := Net(obligations)
	if err != nil {
		t.Fatalf("Net failed: %v", err)
	}
	return netted
}

func mustPositions(t *testing.T, obligations []Obligation) map[string]money.Money {
	t.Helper()
	positions, err := Positions(obligations)
	if err != nil {
		t.Fatalf("Positions failed: %v", err)
	}
	return positions
}

func TestNet(t *testing.T) {
	tests := []struct {
		name  string
		input []Obligation
		want  []Obligation
	}{
		{
			name:  "mutual debts cancel",
			input: []Obligation{ob("A", "B", "10"), ob("B", "A", "10")},
			want:  nil,
		},
		{
			name:  "larger side keeps the difference",
			input: []Obligation{ob("A", "B", "15"), ob("B", "A", "5")},
			want:  []Obligation{ob("A", "B", "10")},
		},
		{
			name:  "same direction accumulates",
			input: []Obligation{ob("A", "B", "5"), ob("A", "B", "7")},
			want:  []Obligation{ob("A", "B", "12")},
		},
		{
			name: "multiple pairs",
			input: []Obligation{
				ob("A", "B", "30"),
				ob("B", "A", "10"),
				ob("C", "A", "25"),
				ob("A", "C", "10"),
			},
			want: []Obligation{ob("A", "B", "20"), ob("C", "A", "15")},
		},
		{
			name: "cent amounts do not drift",
			input: []Obligation{
				ob("R", "A", "83.33"),
				ob("S", "A", "83.33"),
				ob("L", "S", "11"),
				ob("A", "S", "11"),
				ob("S", "A", "26.27"),
				ob("R", "A", "26.27"),
				ob("S", "L", "11"),
			},
			want: []Obligation{ob("R", "A", "109.60"), ob("S", "A", "98.60")},
		},
		{
			name:  "empty input",
			input: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustNet(t, tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Net() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNet_FormatsAtBoundary(t *testing.T) {
	got := mustNet(t, []Obligation{
		ob("R", "A", "83.33"),
		ob("R", "A", "26.27"),
	})
	if len(got) != 1 || got[0].Amount.String() != "109.60" {
		t.Fatalf("Net() = %v, want R->A 109.60", got)
	}
}

func randomObligations(r *rand.Rand, n int) []Obligation {
	people := []string{"ann", "bob", "cat", "dan", "eve"}
	obligations := make([]Obligation, 0, n)
	for len(obligations) < n {
		from := people[r.IntN(len(people))]
		to := people[r.IntN(len(people))]
		if from == to {
			continue
		}
		obligations = append(obligations, Obligation{
			From:   from,
			To:     to,
			Amount: money.Money(1 + r.IntN(50000)),
		})
	}
	return obligations
}

func TestNet_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 42))

	for i := 0; i < 200; i++ {
		input := randomObligations(r, 1+r.IntN(20))
		netted := mustNet(t, input)

		if again := mustNet(t, netted); !reflect.DeepEqual(again, netted) {
			t.Fatalf("Net is not idempotent: %v -> %v", netted, again)
		}

		before, after := mustPositions(t, input), mustPositions(t, netted)
		for person, pos := range before {
			if after[person] != pos {
				t.Fatalf("position of %s changed: %s -> %s", person, pos, after[person])
			}
		}

		seen := make(map[[2]string]bool)
		for _, o := range netted {
			if o.Amount <= 0 {
				t.Fatalf("non-positive amount in result: %v", o)
			}
			if seen[[2]string{o.To, o.From}] {
				t.Fatalf("both directions present for %s/%s", o.From, o.To)
			}
			seen[[2]string{o.From, o.To}] = true
		}

		shuffled := make([]Obligation, len(input))
		copy(shuffled, input)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := mustNet(t, shuffled); !reflect.DeepEqual(got, netted) {
			t.Fatalf("Net depends on input order: %v vs %v", got, netted)
		}
	}
}

func TestNet_Overflow(t *testing.T) {
	huge := money.Money(math.MaxInt64/2 + 1)

	tests := []struct {
		name  string
		input []Obligation
	}{
		{
			name:  "same direction sum",
			input: []Obligation{{From: "A", To: "B", Amount: huge}, {From: "A", To: "B", Amount: huge}},
		},
		{
			name:  "opposite directions with negative input",
			input: []Obligation{{From: "A", To: "B", Amount: huge}, {From: "B", To: "A", Amount: -huge}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Net(tt.input)
			if !errors.Is(err, money.ErrOutOfRange) {
				t.Fatalf("Net() = %v, %v; want ErrOutOfRange", got, err)
			}
		})
	}

	// The largest accepted amounts still net exactly.
	got := mustNet(t, []Obligation{
		{From: "A", To: "B", Amount: money.MaxAmount},
		{From: "A", To: "B", Amount: money.MaxAmount},
		{From: "B", To: "A", Amount: 1},
	})
	want := []Obligation{{From: "A", To: "B", Amount: 2*money.MaxAmount - 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Net() = %v, want %v", got, want)
	}
}

func TestPositions_Overflow(t *testing.T) {
	huge := money.Money(math.MaxInt64/2 + 1)
	_, err := Positions([]Obligation{
		{From: "A", To: "B", Amount: huge},
		{From: "C", To: "B", Amount: huge},
	})
	if !errors.Is(err, money.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestOutstanding(t *testing.T) {
	expenses := []ExpenseForBalance{
		// Alice pays 90 for three: Bob and Carol owe 30 each.
		{PayerID: "alice", Amount: money.MustParse("90"), Participants: []string{"alice", "bob", "carol"}},
		// Bob pays 20 for Alice and himself: Alice owes 10.
		{PayerID: "bob", Amount: money.MustParse("20"), Participants: []string{"alice", "bob"}},
	}

	t.Run("no settlements", func(t *testing.T) {
		got, err := Outstanding(expenses, nil)
		if err != nil {
			t.Fatalf("Outstanding: %v", err)
		}
		want := []Obligation{ob("bob", "alice", "20"), ob("carol", "alice", "30")}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Outstanding() = %v, want %v", got, want)
		}
	})

	t.Run("settled pair is removed", func(t *testing.T) {
		got, err := Outstanding(expenses, []Obligation{ob("bob", "alice", "20")})
		if err != nil {
			t.Fatalf("Outstanding: %v", err)
		}
		want := []Obligation{ob("carol", "alice", "30")}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Outstanding() = %v, want %v", got, want)
		}
	})

	t.Run("settlement on reverse pair does not apply", func(t *testing.T) {
		got, err := Outstanding(expenses, []Obligation{ob("alice", "bob", "20")})
		if err != nil {
			t.Fatalf("Outstanding: %v", err)
		}
		want := []Obligation{ob("bob", "alice", "20"), ob("carol", "alice", "30")}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Outstanding() = %v, want %v", got, want)
		}
	})

	t.Run("over-settlement drops the pair", func(t *testing.T) {
		got, err := Outstanding(expenses, []Obligation{ob("carol", "alice", "45")})
		if err != nil {
			t.Fatalf("Outstanding: %v", err)
		}
		want := []Obligation{ob("bob", "alice", "20")}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Outstanding() = %v, want %v", got, want)
		}
	})

	t.Run("overflowing event", func(t *testing.T) {
		huge := money.Money(math.MaxInt64/2 + 1)
		_, err := Outstanding([]ExpenseForBalance{
			{PayerID: "a", Amount: huge, Participants: []string{"b"}},
			{PayerID: "a", Amount: huge, Participants: []string{"b"}},
		}, nil)
		if !errors.Is(err, money.ErrOutOfRange) {
			t.Errorf("expected ErrOutOfRange, got %v", err)
		}
	})

	t.Run("invalid expense", func(t *testing.T) {
		_, err := Outstanding([]ExpenseForBalance{{PayerID: "a", Amount: 100}}, nil)
		if err == nil {
			t.Error("expected error for expense without participants")
		}
	})
}
