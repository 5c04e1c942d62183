package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExclusiveFlag describes a boolean column that at most one row per scope
// may hold (one default address per user, one primary shop per owner, ...).
type ExclusiveFlag struct {
	Table       string
	ScopeColumn string
	FlagColumn  string
	IDColumn    string
}

func (f ExclusiveFlag) idColumn() string {
	if f.IDColumn == "" {
		return "id"
	}
	return f.IDColumn
}

// Assign clears the flag on every row in scope and sets it on targetID.
// It must run inside a transaction so both steps commit together. The scope
// rows are locked first, so concurrent assignments for one scope serialize
// and the last one wins. It returns gorm.ErrRecordNotFound when the target is
// not within scope.
func (f ExclusiveFlag) Assign(tx *gorm.DB, scope, targetID any) error {
	if f.Table == "" || f.ScopeColumn == "" || f.FlagColumn == "" {
		return fmt.Errorf("exclusive flag: table, scope and flag columns are required")
	}

	var held []map[string]any
	lock := tx.Table(f.Table).
		Select(f.idColumn()).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(fmt.Sprintf("%s = ?", f.ScopeColumn), scope).
		Find(&held)
	if lock.Error != nil {
		return fmt.Errorf("lock %s rows: %w", f.Table, lock.Error)
	}

	unset := tx.Table(f.Table).
		Where(fmt.Sprintf("%s = ? AND %s = ?", f.ScopeColumn, f.FlagColumn), scope, true).
		Update(f.FlagColumn, false)
	if unset.Error != nil {
		return fmt.Errorf("clear %s.%s: %w", f.Table, f.FlagColumn, unset.Error)
	}

	set := tx.Table(f.Table).
		Where(fmt.Sprintf("%s = ? AND %s = ?", f.idColumn(), f.ScopeColumn), targetID, scope).
		Update(f.FlagColumn, true)
	if set.Error != nil {
		return fmt.Errorf("set %s.%s: %w", f.Table, f.FlagColumn, set.Error)
	}
	if set.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
