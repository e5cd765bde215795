package repository

import (
	"context"
	"errors"
	"fmt"

	"finance_tracker/internal/domain"

	"gorm.io/gorm"
)

// recordPtr constrains P to be a pointer to T implementing domain.Record.
type recordPtr[T any] interface {
	*T
	domain.Record
}

// RecordRepository persists one kind of per-user record (expenses or
// incomes). Every query is scoped by the owning user id.
type RecordRepository[T any, P recordPtr[T]] struct {
	db *gorm.DB
}

// NewRecordRepository creates a RecordRepository for T
func NewRecordRepository[T any, P recordPtr[T]](db *gorm.DB) *RecordRepository[T, P] {
	return &RecordRepository[T, P]{db: db}
}

// NewExpenseRepository creates the expenses repository
func NewExpenseRepository(db *gorm.DB) *RecordRepository[domain.Expense, *domain.Expense] {
	return NewRecordRepository[domain.Expense](db)
}

// NewIncomeRepository creates the incomes repository
func NewIncomeRepository(db *gorm.DB) *RecordRepository[domain.Income, *domain.Income] {
	return NewRecordRepository[domain.Income](db)
}

// List returns the user's records in id order
func (r *RecordRepository[T, P]) List(ctx context.Context, userID uint) ([]T, error) {
	var records []T
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Create inserts rec for the user
func (r *RecordRepository[T, P]) Create(ctx context.Context, userID uint, rec P) error {
	rec.SetRecordID(0)
	rec.SetOwner(userID)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// Update overwrites the editable columns of the user's record id. On success
// rec carries the record's id.
func (r *RecordRepository[T, P]) Update(ctx context.Context, userID, id uint, rec P) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing T
		err := tx.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		} else if err != nil {
			return fmt.Errorf("find record: %w", err)
		}
		if err := tx.Model(P(&existing)).Updates(rec.Columns()).Error; err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	rec.SetRecordID(id)
	rec.SetOwner(userID)
	return nil
}

// Delete removes the user's record id
func (r *RecordRepository[T, P]) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(P(new(T)))
	if res.Error != nil {
		return fmt.Errorf("delete record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
