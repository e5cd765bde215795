package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RecentLimit is the number of expenses listed on the dashboard.
const RecentLimit = 5

// MonthTotal is one point of the monthly spending trend
type MonthTotal struct {
	Month string          `json:"month"` // YYYY-MM
	Total decimal.Decimal `json:"total"`
}

// Summary is the dashboard aggregate for one user
type Summary struct {
	TotalSpent        decimal.Decimal            `json:"total_spent"`
	TotalIncome       decimal.Decimal            `json:"total_income"`
	Balance           decimal.Decimal            `json:"balance"`
	CategoryBreakdown map[string]decimal.Decimal `json:"category_breakdown"`
	MonthlyTrend      []MonthTotal               `json:"monthly_trend"`
	MonthlyAverage    decimal.Decimal            `json:"monthly_average"`
	RecentExpenses    []Expense                  `json:"recent_expenses"`
}

// Summarize aggregates a user's records into the dashboard summary.
// The monthly average is total spending divided by the number of months
// that have at least one expense.
func Summarize(expenses []Expense, incomes []Income) Summary {
	s := Summary{
		TotalSpent:        decimal.Zero,
		TotalIncome:       decimal.Zero,
		CategoryBreakdown: map[string]decimal.Decimal{},
		MonthlyTrend:      []MonthTotal{},
		MonthlyAverage:    decimal.Zero,
		RecentExpenses:    []Expense{},
	}

	months := map[string]decimal.Decimal{}
	for _, e := range expenses {
		s.TotalSpent = s.TotalSpent.Add(e.Amount)
		s.CategoryBreakdown[e.Category] = s.CategoryBreakdown[e.Category].Add(e.Amount)
		key := e.Date.MonthKey()
		months[key] = months[key].Add(e.Amount)
	}
	for _, i := range incomes {
		s.TotalIncome = s.TotalIncome.Add(i.Amount)
	}
	s.Balance = s.TotalIncome.Sub(s.TotalSpent)

	for month, total := range months {
		s.MonthlyTrend = append(s.MonthlyTrend, MonthTotal{Month: month, Total: total})
	}
	sort.Slice(s.MonthlyTrend, func(a, b int) bool { return s.MonthlyTrend[a].Month < s.MonthlyTrend[b].Month })
	if len(months) > 0 {
		s.MonthlyAverage = s.TotalSpent.Div(decimal.NewFromInt(int64(len(months)))).Round(2)
	}

	recent := append([]Expense(nil), expenses...)
	sort.SliceStable(recent, func(a, b int) bool {
		if !recent[a].Date.Equal(recent[b].Date.Time) {
			return recent[a].Date.After(recent[b].Date.Time)
		}
		return recent[a].ID > recent[b].ID
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	s.RecentExpenses = append(s.RecentExpenses, recent...)
	return s
}
