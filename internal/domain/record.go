package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is a per-user ledger entry managed through the CRUD endpoints.
type Record interface {
	RecordID() uint
	SetRecordID(id uint)
	SetOwner(userID uint)
	// Columns returns the user-editable columns keyed by column name.
	Columns() map[string]any
	// Validate returns field errors keyed by JSON field name.
	Validate() map[string]string
}

// Expense Model
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"index;not null" json:"-"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category    string          `gorm:"size:50;not null" json:"category"`
	Description string          `gorm:"size:150" json:"description"`
	Date        Date            `gorm:"type:date;not null" json:"date"`
	CreatedAt   time.Time       `json:"-"`
}

func (e *Expense) RecordID() uint       { return e.ID }
func (e *Expense) SetRecordID(id uint)  { e.ID = id }
func (e *Expense) SetOwner(userID uint) { e.UserID = userID }

func (e *Expense) Columns() map[string]any {
	return map[string]any{
		"amount":      e.Amount,
		"category":    e.Category,
		"description": e.Description,
		"date":        e.Date,
	}
}

func (e *Expense) Validate() map[string]string {
	errs := map[string]string{}
	if msg := ValidateAmount(e.Amount); msg != "" {
		errs["amount"] = msg
	}
	if msg := ValidateCategory(e.Category); msg != "" {
		errs["category"] = msg
	}
	if msg := ValidateDescription(e.Description); msg != "" {
		errs["description"] = msg
	}
	if e.Date.IsZero() {
		errs["date"] = "Date is required"
	}
	return errs
}

// Income Model
type Income struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"index;not null" json:"-"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Source      string          `gorm:"size:50;not null" json:"source"`
	Description string          `gorm:"size:150" json:"description"`
	IncomeDate  Date            `gorm:"type:date;not null" json:"income_date"`
	CreatedAt   time.Time       `json:"-"`
}

func (i *Income) RecordID() uint       { return i.ID }
func (i *Income) SetRecordID(id uint)  { i.ID = id }
func (i *Income) SetOwner(userID uint) { i.UserID = userID }

func (i *Income) Columns() map[string]any {
	return map[string]any{
		"amount":      i.Amount,
		"source":      i.Source,
		"description": i.Description,
		"income_date": i.IncomeDate,
	}
}

func (i *Income) Validate() map[string]string {
	errs := map[string]string{}
	if msg := ValidateAmount(i.Amount); msg != "" {
		errs["amount"] = msg
	}
	if msg := ValidateSource(i.Source); msg != "" {
		errs["source"] = msg
	}
	if msg := ValidateDescription(i.Description); msg != "" {
		errs["description"] = msg
	}
	if i.IncomeDate.IsZero() {
		errs["income_date"] = "Date is required"
	}
	return errs
}
