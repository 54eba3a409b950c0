// Package memory provides an in-process implementation of storage.Store.
// It backs tests and the CLI's offline mode.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uilacceb/splitter/internal/models"
	"github.com/uilacceb/splitter/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	// Expense storage, keyed by expense ID
	expenses map[string]*models.Expense

	// Settlement storage, keyed by settlement ID
	settlements map[string]*models.Settlement

	// Injected failures, keyed by method name
	faults map[string]error
}

func New() *Store {
	return &Store{
		expenses:    make(map[string]*models.Expense),
		settlements: make(map[string]*models.Settlement),
		faults:      make(map[string]error),
	}
}

// FailOn makes every later call to the named method return err until it is
// cleared with a nil err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.faults, method)
		return
	}
	s.faults[method] = err
}

func (s *Store) fault(method string) error {
	if err, ok := s.faults[method]; ok {
		return fmt.Errorf("memory: %s: %w", method, err)
	}
	return nil
}

// Expense Store implementation
func (s *Store) CreateExpense(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("CreateExpense"); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if e.CreatedAt == 0 {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	s.expenses[e.ID] = cloneExpense(e)
	return nil
}

func (s *Store) GetExpense(_ context.Context, expenseID string) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.fault("GetExpense"); err != nil {
		return nil, err
	}
	if e, ok := s.expenses[expenseID]; ok {
		return cloneExpense(e), nil
	}
	return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
}

func (s *Store) UpdateExpense(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("UpdateExpense"); err != nil {
		return err
	}
	existing, ok := s.expenses[e.ID]
	if !ok {
		return fmt.Errorf("expense %s: %w", e.ID, storage.ErrNotFound)
	}
	e.EventID = existing.EventID
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now().Unix()
	s.expenses[e.ID] = cloneExpense(e)
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("DeleteExpense"); err != nil {
		return err
	}
	if _, ok := s.expenses[expenseID]; !ok {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	delete(s.expenses, expenseID)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, eventID string) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.fault("ListExpenses"); err != nil {
		return nil, err
	}
	var result []*models.Expense
	for _, e := range s.expenses {
		if e.EventID == eventID {
			result = append(result, cloneExpense(e))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Settlement Store implementation
func (s *Store) ListSettled(_ context.Context, eventID string) ([]*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.fault("ListSettled"); err != nil {
		return nil, err
	}
	settled := true
	return s.listSettlements(eventID, models.SettlementFilter{Settled: &settled}), nil
}

func (s *Store) ReplaceUnsettled(_ context.Context, eventID string, rows []models.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Checked before any change so a failure leaves the previous rows intact.
	if err := s.fault("ReplaceUnsettled"); err != nil {
		return err
	}
	for id, row := range s.settlements {
		if row.EventID == eventID && !row.Settled {
			delete(s.settlements, id)
		}
	}
	now := time.Now().Unix()
	for _, row := range rows {
		stored := row
		stored.ID = uuid.New().String()
		stored.EventID = eventID
		stored.Settled = false
		stored.CreatedAt = now
		stored.UpdatedAt = now
		s.settlements[stored.ID] = &stored
	}
	return nil
}

func (s *Store) ListSettlements(_ context.Context, eventID string, filter models.SettlementFilter) ([]*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.fault("ListSettlements"); err != nil {
		return nil, err
	}
	return s.listSettlements(eventID, filter), nil
}

func (s *Store) listSettlements(eventID string, filter models.SettlementFilter) []*models.Settlement {
	var result []*models.Settlement
	for _, row := range s.settlements {
		if row.EventID == eventID && filter.Matches(row) {
			clone := *row
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})
	return result
}

func (s *Store) GetSettlement(_ context.Context, settlementID string) (*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.fault("GetSettlement"); err != nil {
		return nil, err
	}
	if row, ok := s.settlements[settlementID]; ok {
		clone := *row
		return &clone, nil
	}
	return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
}

func (s *Store) SetSettled(_ context.Context, settlementID string, settled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("SetSettled"); err != nil {
		return err
	}
	row, ok := s.settlements[settlementID]
	if !ok {
		return fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	row.Settled = settled
	row.UpdatedAt = time.Now().Unix()
	return nil
}

// Event Store implementation
func (s *Store) DeleteEvent(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("DeleteEvent"); err != nil {
		return err
	}
	for id, e := range s.expenses {
		if e.EventID == eventID {
			delete(s.expenses, id)
		}
	}
	for id, row := range s.settlements {
		if row.EventID == eventID {
			delete(s.settlements, id)
		}
	}
	return nil
}

func (s *Store) ListEventIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.fault("ListEventIDs"); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, e := range s.expenses {
		seen[e.EventID] = true
	}
	for _, row := range s.settlements {
		seen[row.EventID] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) Close() error {
	return nil
}

func cloneExpense(e *models.Expense) *models.Expense {
	clone := *e
	clone.SplitWith = slices.Clone(e.SplitWith)
	return &clone
}
