package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"gastos/internal/core"
	applog "gastos/internal/log"
)

// Snapshot is the full persisted state.
type Snapshot struct {
	Categories []string
	Expenses   []core.Expense
	Goals      core.Goals
}

// Store reads and writes the typed collections on top of a KV backend.
//
// Loading never fails on bad data: a missing or malformed value is replaced
// by its default, logged, and the default is written back right away. Only
// backend errors are returned.
type Store struct {
	kv     KV
	logger *applog.Logger
}

func NewStore(kv KV, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.NewLogger(nil)
	}
	return &Store{kv: kv, logger: logger.WithComponent(applog.ComponentStorage)}
}

func (s *Store) LoadCategories(ctx context.Context) ([]string, error) {
	raw, ok, err := s.kv.Get(ctx, KeyCategories)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyCategories, err)
	}
	if ok {
		cats, changed, derr := decodeCategories(raw)
		if derr == nil && len(cats) > 0 {
			if changed {
				s.logger.InfoContext(ctx, "Normalized stored categories", applog.FieldKey, KeyCategories)
				if err := s.SaveCategories(ctx, cats); err != nil {
					return nil, err
				}
			}
			return cats, nil
		}
		if derr != nil {
			s.logger.WarnContext(ctx, "Malformed categories, restoring defaults",
				applog.FieldKey, KeyCategories, applog.FieldError, derr)
		}
	}
	cats := append([]string(nil), core.DefaultCategories...)
	if err := s.SaveCategories(ctx, cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (s *Store) SaveCategories(ctx context.Context, cats []string) error {
	raw, err := encodeCategories(cats)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyCategories, err)
	}
	return s.set(ctx, KeyCategories, raw)
}

func (s *Store) LoadExpenses(ctx context.Context) ([]core.Expense, error) {
	raw, ok, err := s.kv.Get(ctx, KeyExpenses)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyExpenses, err)
	}
	if ok {
		list, changed, derr := decodeExpenses(raw)
		if derr == nil {
			if changed {
				s.logger.InfoContext(ctx, "Normalized stored expenses", applog.FieldKey, KeyExpenses)
				if err := s.SaveExpenses(ctx, list); err != nil {
					return nil, err
				}
			}
			return list, nil
		}
		s.logger.WarnContext(ctx, "Malformed expenses, restoring defaults",
			applog.FieldKey, KeyExpenses, applog.FieldError, derr)
	}
	list := []core.Expense{}
	if err := s.SaveExpenses(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) SaveExpenses(ctx context.Context, list []core.Expense) error {
	raw, err := encodeExpenses(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyExpenses, err)
	}
	return s.set(ctx, KeyExpenses, raw)
}

func (s *Store) LoadGoals(ctx context.Context) (core.Goals, error) {
	raw, ok, err := s.kv.Get(ctx, KeyGoals)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyGoals, err)
	}
	if ok {
		g, changed, derr := decodeGoals(raw)
		if derr == nil {
			if changed {
				s.logger.InfoContext(ctx, "Normalized stored goals", applog.FieldKey, KeyGoals)
				if err := s.SaveGoals(ctx, g); err != nil {
					return nil, err
				}
			}
			return g, nil
		}
		s.logger.WarnContext(ctx, "Malformed goals, restoring defaults",
			applog.FieldKey, KeyGoals, applog.FieldError, derr)
	}
	g := core.Goals{}
	if err := s.SaveGoals(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Store) SaveGoals(ctx context.Context, g core.Goals) error {
	raw, err := encodeGoals(g)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyGoals, err)
	}
	return s.set(ctx, KeyGoals, raw)
}

// LoadAll loads every collection.
func (s *Store) LoadAll(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Categories, err = s.LoadCategories(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Expenses, err = s.LoadExpenses(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Goals, err = s.LoadGoals(ctx); err != nil {
		return Snapshot{}, err
	}
	s.logger.DebugContext(ctx, "State loaded",
		"categories", len(snap.Categories),
		"expenses", len(snap.Expenses),
		"goals", len(snap.Goals))
	return snap, nil
}

// ImportSnapshot copies a localStorage dump into the store and returns the
// loaded result. Values may be JSON strings holding JSON, as localStorage
// keeps them, or inline JSON. Unknown keys are ignored.
func (s *Store) ImportSnapshot(ctx context.Context, raw []byte) (Snapshot, error) {
	var dump map[string]json.RawMessage
	if err := json.Unmarshal(raw, &dump); err != nil || dump == nil {
		return Snapshot{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidSnapshot)
	}
	imported := 0
	for _, key := range Keys {
		v, ok := dump[key]
		if !ok {
			continue
		}
		value := []byte(v)
		var inner string
		if json.Unmarshal(v, &inner) == nil {
			value = []byte(inner)
		}
		if err := s.set(ctx, key, value); err != nil {
			return Snapshot{}, err
		}
		imported++
	}
	s.logger.InfoContext(ctx, "Snapshot imported",
		applog.FieldOperation, applog.OperationImport, "keys", imported)
	return s.LoadAll(ctx)
}

func (s *Store) set(ctx context.Context, key string, raw []byte) error {
	if err := s.kv.Set(ctx, key, raw); err != nil {
		s.logger.ErrorContext(ctx, "Persist failed", applog.FieldKey, key, applog.FieldError, err)
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
