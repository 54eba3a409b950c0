// Package postgres provides a PostgreSQL implementation of storage.Store
// built on gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/uilacceb/splitter/internal/models"
	"github.com/uilacceb/splitter/internal/money"
	"github.com/uilacceb/splitter/internal/storage"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

type expenseRecord struct {
	ID           string              `gorm:"primaryKey;size:64"`
	EventID      string              `gorm:"index;not null;size:255"`
	Description  string              `gorm:"size:255"`
	PaidBy       string              `gorm:"not null;size:255"`
	AmountCents  int64               `gorm:"not null"`
	Participants []participantRecord `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE"`
	CreatedAt    int64               `gorm:"autoCreateTime:false"`
	UpdatedAt    int64               `gorm:"autoUpdateTime:false"`
}

func (expenseRecord) TableName() string { return "expenses" }

type participantRecord struct {
	ExpenseID string `gorm:"primaryKey;size:64"`
	PersonID  string `gorm:"primaryKey;size:255"`
	Position  int    `gorm:"not null"`
}

func (participantRecord) TableName() string { return "expense_participants" }

type settlementRecord struct {
	ID          string `gorm:"primaryKey;size:64"`
	EventID     string `gorm:"index:idx_settlements_event_settled;not null;size:255"`
	FromPerson  string `gorm:"not null;size:255"`
	ToPerson    string `gorm:"not null;size:255"`
	AmountCents int64  `gorm:"not null"`
	Settled     bool   `gorm:"index:idx_settlements_event_settled;not null;default:false"`
	CreatedAt   int64  `gorm:"autoCreateTime:false"`
	UpdatedAt   int64  `gorm:"autoUpdateTime:false"`
}

func (settlementRecord) TableName() string { return "settlements" }

// PostgresStore implements storage.Store on PostgreSQL.
type PostgresStore struct {
	db *gorm.DB
}

// New connects to dsn and migrates the schema.
func New(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&expenseRecord{}, &participantRecord{}, &settlementRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = now

	record := toExpenseRecord(expense)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	var record expenseRecord
	err := s.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&record, "id = ?", expenseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return record.toModel(), nil
}

func (s *PostgresStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&expenseRecord{}).Where("id = ?", expense.ID).Updates(map[string]any{
			"description":  expense.Description,
			"paid_by":      expense.PaidBy,
			"amount_cents": expense.Amount.Cents(),
			"updated_at":   expense.UpdatedAt,
		})
		if result.Error != nil {
			return fmt.Errorf("failed to update expense: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
		}

		if err := tx.Where("expense_id = ?", expense.ID).Delete(&participantRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear participants: %w", err)
		}
		participants := toParticipantRecords(expense.ID, expense.SplitWith)
		if len(participants) > 0 {
			if err := tx.Create(&participants).Error; err != nil {
				return fmt.Errorf("failed to insert participants: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", expenseID).Delete(&participantRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete participants: %w", err)
		}
		result := tx.Where("id = ?", expenseID).Delete(&expenseRecord{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete expense: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
		}
		return nil
	})
}

func (s *PostgresStore) ListExpenses(ctx context.Context, eventID string) ([]*models.Expense, error) {
	var records []expenseRecord
	err := s.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("event_id = ?", eventID).
		Order("created_at, id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := make([]*models.Expense, 0, len(records))
	for i := range records {
		expenses = append(expenses, records[i].toModel())
	}
	return expenses, nil
}

func (s *PostgresStore) ListSettled(ctx context.Context, eventID string) ([]*models.Settlement, error) {
	settled := true
	return s.ListSettlements(ctx, eventID, models.SettlementFilter{Settled: &settled})
}

// ReplaceUnsettled swaps the unsettled rows of an event inside one transaction.
func (s *PostgresStore) ReplaceUnsettled(ctx context.Context, eventID string, rows []models.Settlement) error {
	now := time.Now().Unix()
	records := make([]settlementRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, settlementRecord{
			ID:          uuid.New().String(),
			EventID:     eventID,
			FromPerson:  row.From,
			ToPerson:    row.To,
			AmountCents: row.Amount.Cents(),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ? AND settled = ?", eventID, false).Delete(&settlementRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete unsettled rows: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("failed to insert settlements: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) ListSettlements(ctx context.Context, eventID string, filter models.SettlementFilter) ([]*models.Settlement, error) {
	query := s.db.WithContext(ctx).Where("event_id = ?", eventID)
	if filter.Settled != nil {
		query = query.Where("settled = ?", *filter.Settled)
	}

	var records []settlementRecord
	if err := query.Order("from_person, to_person, created_at, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	settlements := make([]*models.Settlement, 0, len(records))
	for i := range records {
		settlements = append(settlements, records[i].toModel())
	}
	return settlements, nil
}

func (s *PostgresStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	var record settlementRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", settlementID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return record.toModel(), nil
}

func (s *PostgresStore) SetSettled(ctx context.Context, settlementID string, settled bool) error {
	result := s.db.WithContext(ctx).Model(&settlementRecord{}).
		Where("id = ?", settlementID).
		Updates(map[string]any{"settled": settled, "updated_at": time.Now().Unix()})
	if result.Error != nil {
		return fmt.Errorf("failed to update settlement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteEvent(ctx context.Context, eventID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expenseIDs := tx.Model(&expenseRecord{}).Select("id").Where("event_id = ?", eventID)
		if err := tx.Where("expense_id IN (?)", expenseIDs).Delete(&participantRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete participants: %w", err)
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&expenseRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete expenses: %w", err)
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&settlementRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete settlements: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) ListEventIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Raw("SELECT event_id FROM expenses UNION SELECT event_id FROM settlements ORDER BY 1").
		Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return ids, nil
}

func toExpenseRecord(e *models.Expense) expenseRecord {
	return expenseRecord{
		ID:           e.ID,
		EventID:      e.EventID,
		Description:  e.Description,
		PaidBy:       e.PaidBy,
		AmountCents:  e.Amount.Cents(),
		Participants: toParticipantRecords(e.ID, e.SplitWith),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toParticipantRecords(expenseID string, people []string) []participantRecord {
	records := make([]participantRecord, 0, len(people))
	for i, person := range people {
		records = append(records, participantRecord{ExpenseID: expenseID, PersonID: person, Position: i})
	}
	return records
}

func (r *expenseRecord) toModel() *models.Expense {
	e := &models.Expense{
		ID:          r.ID,
		EventID:     r.EventID,
		Description: r.Description,
		PaidBy:      r.PaidBy,
		Amount:      money.Cents(r.AmountCents),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for _, p := range r.Participants {
		e.SplitWith = append(e.SplitWith, p.PersonID)
	}
	return e
}

func (r *settlementRecord) toModel() *models.Settlement {
	return &models.Settlement{
		ID:        r.ID,
		EventID:   r.EventID,
		From:      r.FromPerson,
		To:        r.ToPerson,
		Amount:    money.Cents(r.AmountCents),
		Settled:   r.Settled,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
