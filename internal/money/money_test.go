package money

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Money
		wantErr error
	}{
		{in: "109.60", want: 10960},
		{in: "109.6", want: 10960},
		{in: "12", want: 1200},
		{in: "0.01", want: 1},
		{in: "-3.50", want: -350},
		{in: " 7.25 ", want: 725},
		{in: "1.500", want: 150},
		{in: "1.005", wantErr: ErrPrecision},
		{in: "83.333", wantErr: ErrPrecision},
		{in: "99999999999999999999", wantErr: ErrOutOfRange},
		{in: "10000000000000", want: MaxAmount},
		{in: "-10000000000000", want: -MaxAmount},
		{in: "10000000000000.01", wantErr: ErrOutOfRange},
		{in: "50000000000000000", wantErr: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}

	if _, err := Parse("abc"); err == nil {
		t.Error("Parse(\"abc\") expected error, got nil")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{10960, "109.60"},
		{0, "0.00"},
		{5, "0.05"},
		{-5, "-0.05"},
		{-12345, "-123.45"},
		{100, "1.00"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("Money(%d).String() = %q, want %q", tt.m, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"109.60", "0.00", "98.60", "400.88", "-0.05"} {
		m, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := m.String(); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestJSON(t *testing.T) {
	type payload struct {
		Amount Money `json:"amount"`
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"amount":"109.60"}`), &p); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if p.Amount != 10960 {
		t.Errorf("amount = %d, want 10960", p.Amount)
	}

	if err := json.Unmarshal([]byte(`{"amount":26.27}`), &p); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if p.Amount != 2627 {
		t.Errorf("amount = %d, want 2627", p.Amount)
	}

	if err := json.Unmarshal([]byte(`{"amount":"1.001"}`), &p); err == nil {
		t.Error("expected precision error for 1.001")
	}

	out, err := json.Marshal(payload{Amount: 10960})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"amount":"109.60"}` {
		t.Errorf("marshal = %s", out)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		total Money
		ids   []string
		want  map[string]Money
	}{
		{
			name:  "even",
			total: 9000,
			ids:   []string{"a", "b", "c"},
			want:  map[string]Money{"a": 3000, "b": 3000, "c": 3000},
		},
		{
			name:  "one cent remainder goes to lowest id",
			total: 10000,
			ids:   []string{"c", "a", "b"},
			want:  map[string]Money{"a": 3334, "b": 3333, "c": 3333},
		},
		{
			name:  "two cent remainder",
			total: 68188 + 1,
			ids:   []string{"Zach", "Andy", "Aileen"},
			want:  map[string]Money{"Aileen": 22730, "Andy": 22730, "Zach": 22729},
		},
		{
			name:  "zero total",
			total: 0,
			ids:   []string{"a", "b"},
			want:  map[string]Money{"a": 0, "b": 0},
		},
		{
			name:  "single participant",
			total: 101,
			ids:   []string{"solo"},
			want:  map[string]Money{"solo": 101},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.total, tt.ids)
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			var sum Money
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("share[%s] = %d, want %d", id, got[id], want)
				}
				sum += got[id]
			}
			if sum != tt.total {
				t.Errorf("shares sum to %d, want %d", sum, tt.total)
			}
		})
	}
}

func TestSplitErrors(t *testing.T) {
	if _, err := Split(100, nil); err == nil {
		t.Error("expected error for empty participants")
	}
	if _, err := Split(100, []string{"a", "a"}); err == nil {
		t.Error("expected error for duplicate participants")
	}
	if _, err := Split(-1, []string{"a"}); err == nil {
		t.Error("expected error for negative total")
	}
}

func TestCheckedArithmetic(t *testing.T) {
	const max = Money(math.MaxInt64)
	const min = Money(math.MinInt64)

	tests := []struct {
		name    string
		op      func(a, b Money) (Money, error)
		a, b    Money
		want    Money
		wantErr bool
	}{
		{name: "add", op: Add, a: 150, b: 25, want: 175},
		{name: "add negative", op: Add, a: 150, b: -200, want: -50},
		{name: "add overflow", op: Add, a: max - 1, b: 2, wantErr: true},
		{name: "add underflow", op: Add, a: min + 1, b: -2, wantErr: true},
		{name: "sub", op: Sub, a: 150, b: 25, want: 125},
		{name: "sub overflow", op: Sub, a: max, b: -1, wantErr: true},
		{name: "sub underflow", op: Sub, a: min, b: 1, wantErr: true},
		{name: "sub min", op: Sub, a: 0, b: min, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(tt.a, tt.b)
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Fatalf("expected ErrOutOfRange, got %d, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := Sum(MaxAmount, max); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Sum overflow: expected ErrOutOfRange, got %v", err)
	}
}

func TestCheckRange(t *testing.T) {
	for _, m := range []Money{0, 1, -1, MaxAmount, -MaxAmount} {
		if err := m.CheckRange(); err != nil {
			t.Errorf("CheckRange(%d) = %v", m, err)
		}
	}
	for _, m := range []Money{MaxAmount + 1, -MaxAmount - 1, Money(math.MaxInt64)} {
		if err := m.CheckRange(); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("CheckRange(%d) = %v, want ErrOutOfRange", m, err)
		}
	}
}
