package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/uilacceb/splitter/internal/models"
	"github.com/uilacceb/splitter/internal/money"
	"github.com/uilacceb/splitter/internal/storage"
)

// newTestStore connects to the database named by SPLITTER_TEST_POSTGRES_URL.
// Tests use fresh event IDs so they can share one database.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("SPLITTER_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("SPLITTER_TEST_POSTGRES_URL not set")
	}
	store, err := New(dsn)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresStore_Expenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	eventID := uuid.New().String()
	t.Cleanup(func() { store.DeleteEvent(ctx, eventID) })

	expense := &models.Expense{
		EventID:   eventID,
		PaidBy:    "Alice",
		Amount:    money.MustParse("42.10"),
		SplitWith: []string{"Bob", "Alice"},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	got, err := store.GetExpense(ctx, expense.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Amount != money.Cents(4210) || len(got.SplitWith) != 2 || got.SplitWith[0] != "Bob" {
		t.Errorf("unexpected expense %+v", got)
	}

	expense.SplitWith = []string{"Charlie"}
	if err := store.UpdateExpense(ctx, expense); err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	list, err := store.ListExpenses(ctx, eventID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list) != 1 || len(list[0].SplitWith) != 1 || list[0].SplitWith[0] != "Charlie" {
		t.Errorf("ListExpenses = %+v", list)
	}

	if err := store.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresStore_Settlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	eventID := uuid.New().String()
	t.Cleanup(func() { store.DeleteEvent(ctx, eventID) })

	if err := store.ReplaceUnsettled(ctx, eventID, []models.Settlement{
		{From: "B", To: "A", Amount: 1000},
		{From: "C", To: "A", Amount: 525},
	}); err != nil {
		t.Fatalf("ReplaceUnsettled failed: %v", err)
	}
	rows, err := store.ListSettlements(ctx, eventID, models.SettlementFilter{})
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if err := store.SetSettled(ctx, rows[0].ID, true); err != nil {
		t.Fatalf("SetSettled failed: %v", err)
	}

	if err := store.ReplaceUnsettled(ctx, eventID, nil); err != nil {
		t.Fatalf("ReplaceUnsettled failed: %v", err)
	}
	settled, err := store.ListSettled(ctx, eventID)
	if err != nil {
		t.Fatalf("ListSettled failed: %v", err)
	}
	if len(settled) != 1 || settled[0].From != "B" {
		t.Errorf("ListSettled = %+v", settled)
	}

	all, _ := store.ListSettlements(ctx, eventID, models.SettlementFilter{})
	if len(all) != 1 {
		t.Errorf("Expected only the settled row to remain, got %+v", all)
	}
}
