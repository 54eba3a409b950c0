package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/uilacceb/splitter/internal/models"
	"github.com/uilacceb/splitter/internal/money"
	"github.com/uilacceb/splitter/internal/storage"
)

func TestStore_ExpensesAreCopied(t *testing.T) {
	store := New()
	ctx := context.Background()

	e := &models.Expense{EventID: "ev", PaidBy: "A", Amount: money.MustParse("9"), SplitWith: []string{"A", "B"}}
	if err := store.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	e.SplitWith[0] = "Z"

	got, err := store.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.SplitWith[0] != "A" {
		t.Errorf("stored expense aliased caller slice: %v", got.SplitWith)
	}
}

func TestStore_UpdateKeepsEvent(t *testing.T) {
	store := New()
	ctx := context.Background()

	e := &models.Expense{EventID: "ev", PaidBy: "A", Amount: 100, SplitWith: []string{"A"}}
	if err := store.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	update := &models.Expense{ID: e.ID, EventID: "other", PaidBy: "B", Amount: 200, SplitWith: []string{"A", "B"}}
	if err := store.UpdateExpense(ctx, update); err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	got, _ := store.GetExpense(ctx, e.ID)
	if got.EventID != "ev" || got.PaidBy != "B" {
		t.Errorf("unexpected expense after update %+v", got)
	}

	if err := store.UpdateExpense(ctx, &models.Expense{ID: "missing"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ReplaceUnsettled(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.ReplaceUnsettled(ctx, "ev", []models.Settlement{
		{From: "B", To: "A", Amount: 100},
		{From: "C", To: "A", Amount: 50},
	}); err != nil {
		t.Fatalf("ReplaceUnsettled failed: %v", err)
	}
	rows, _ := store.ListSettlements(ctx, "ev", models.SettlementFilter{})
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if err := store.SetSettled(ctx, rows[0].ID, true); err != nil {
		t.Fatalf("SetSettled failed: %v", err)
	}

	t.Run("settled rows survive", func(t *testing.T) {
		if err := store.ReplaceUnsettled(ctx, "ev", nil); err != nil {
			t.Fatalf("ReplaceUnsettled failed: %v", err)
		}
		rows, _ := store.ListSettlements(ctx, "ev", models.SettlementFilter{})
		if len(rows) != 1 || !rows[0].Settled || rows[0].From != "B" {
			t.Errorf("rows = %+v", rows)
		}
	})

	t.Run("failure leaves rows intact", func(t *testing.T) {
		if err := store.ReplaceUnsettled(ctx, "ev", []models.Settlement{{From: "C", To: "A", Amount: 50}}); err != nil {
			t.Fatalf("ReplaceUnsettled failed: %v", err)
		}

		boom := errors.New("disk full")
		store.FailOn("ReplaceUnsettled", boom)
		err := store.ReplaceUnsettled(ctx, "ev", nil)
		if !errors.Is(err, boom) {
			t.Fatalf("expected injected error, got %v", err)
		}
		store.FailOn("ReplaceUnsettled", nil)

		no := false
		rows, _ := store.ListSettlements(ctx, "ev", models.SettlementFilter{Settled: &no})
		if len(rows) != 1 || rows[0].From != "C" {
			t.Errorf("unsettled rows changed after failure: %+v", rows)
		}
	})
}

func TestStore_DeleteEvent(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, ev := range []string{"keep", "drop"} {
		if err := store.CreateExpense(ctx, &models.Expense{EventID: ev, PaidBy: "A", Amount: 1, SplitWith: []string{"A"}}); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if err := store.ReplaceUnsettled(ctx, ev, []models.Settlement{{From: "B", To: "A", Amount: 1}}); err != nil {
			t.Fatalf("ReplaceUnsettled failed: %v", err)
		}
	}

	if err := store.DeleteEvent(ctx, "drop"); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}
	ids, _ := store.ListEventIDs(ctx)
	if len(ids) != 1 || ids[0] != "keep" {
		t.Errorf("ListEventIDs = %v", ids)
	}
}
