package form

import (
	"finance_tracker/internal/domain"

	"github.com/shopspring/decimal"
)

// BuildExpense turns validated expense values into a record
func BuildExpense(v Values) (domain.Expense, error) {
	amount, err := decimal.NewFromString(v.Get("amount"))
	if err != nil {
		return domain.Expense{}, err
	}
	date, err := domain.ParseDate(v.Get("date"))
	if err != nil {
		return domain.Expense{}, err
	}
	return domain.Expense{
		Amount:      amount,
		Category:    v.Get("category"),
		Description: v.Get("description"),
		Date:        date,
	}, nil
}

// ExpenseValues fills an expense form from a record
func ExpenseValues(e domain.Expense) map[string]string {
	return map[string]string{
		"amount":      e.Amount.StringFixed(2),
		"category":    e.Category,
		"description": e.Description,
		"date":        e.Date.String(),
	}
}

// BuildIncome turns validated income values into a record
func BuildIncome(v Values) (domain.Income, error) {
	amount, err := decimal.NewFromString(v.Get("amount"))
	if err != nil {
		return domain.Income{}, err
	}
	date, err := domain.ParseDate(v.Get("income_date"))
	if err != nil {
		return domain.Income{}, err
	}
	return domain.Income{
		Amount:      amount,
		Source:      v.Get("source"),
		Description: v.Get("description"),
		IncomeDate:  date,
	}, nil
}

// IncomeValues fills an income form from a record
func IncomeValues(i domain.Income) map[string]string {
	return map[string]string{
		"amount":      i.Amount.StringFixed(2),
		"source":      i.Source,
		"description": i.Description,
		"income_date": i.IncomeDate.String(),
	}
}
