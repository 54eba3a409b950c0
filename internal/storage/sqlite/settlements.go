package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uilacceb/splitter/internal/models"
	"github.com/uilacceb/splitter/internal/money"
	"github.com/uilacceb/splitter/internal/storage"
)

const settlementColumns = `id, event_id, from_person, to_person, amount_cents, settled, created_at, updated_at`

// ListSettled returns the settled rows of an event.
func (s *SQLiteStore) ListSettled(ctx context.Context, eventID string) ([]*models.Settlement, error) {
	settled := true
	return s.ListSettlements(ctx, eventID, models.SettlementFilter{Settled: &settled})
}

// ReplaceUnsettled deletes the unsettled rows of an event and inserts rows in
// a single transaction. Settled rows are never touched.
func (s *SQLiteStore) ReplaceUnsettled(ctx context.Context, eventID string, rows []models.Settlement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM settlements WHERE event_id = ? AND settled = 0",
		eventID,
	); err != nil {
		return fmt.Errorf("failed to delete unsettled rows: %w", err)
	}

	now := time.Now().Unix()
	for _, row := range rows {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO settlements (`+settlementColumns+`)
			 VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
			uuid.New().String(), eventID, row.From, row.To, row.Amount.Cents(), now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListSettlements retrieves the settlements of an event matching filter.
func (s *SQLiteStore) ListSettlements(ctx context.Context, eventID string, filter models.SettlementFilter) ([]*models.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE event_id = ?`
	args := []any{eventID}
	if filter.Settled != nil {
		query += " AND settled = ?"
		args = append(args, boolToInt(*filter.Settled))
	}
	query += " ORDER BY from_person, to_person, created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`,
		settlementID,
	)
	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

// SetSettled flips the settled flag of a row.
func (s *SQLiteStore) SetSettled(ctx context.Context, settlementID string, settled bool) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE settlements SET settled = ?, updated_at = ? WHERE id = ?",
		boolToInt(settled), time.Now().Unix(), settlementID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row scanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var cents, settled int64
	err := row.Scan(&settlement.ID, &settlement.EventID, &settlement.From, &settlement.To,
		&cents, &settled, &settlement.CreatedAt, &settlement.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan settlement: %w", err)
	}
	settlement.Amount = money.Cents(cents)
	settlement.Settled = settled != 0
	return settlement, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
