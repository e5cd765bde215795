package web

import (
	"net/http"

	"finance_tracker/internal/client"
	"finance_tracker/internal/datatable"
	"finance_tracker/internal/domain"

	"github.com/gin-gonic/gin"
)

// DashboardView is the data of the dashboard page
type DashboardView struct {
	Summary *domain.Summary
	Pie     PieChart
	Trend   LineChart
	Recent  datatable.View
}

// recentTable is the read-only recent activity table
var recentTable = datatable.New(
	func(e domain.Expense) string { return formatID(e.ID) },
	datatable.Column[domain.Expense]{Key: "date", Label: "Date", Value: func(e domain.Expense) any { return e.Date.String() }},
	datatable.Column[domain.Expense]{Key: "category", Label: "Category", Value: func(e domain.Expense) any { return e.Category }},
	datatable.Column[domain.Expense]{Key: "description", Label: "Description", Value: func(e domain.Expense) any { return e.Description }},
	datatable.Column[domain.Expense]{
		Key:    "amount",
		Label:  "Amount",
		Value:  func(e domain.Expense) any { return e.Amount },
		Format: func(e domain.Expense) string { return domain.FormatINR(e.Amount) },
	},
)

// dashboard fetches the summary once per render
func (s *Server) dashboard(c *gin.Context) {
	summary, err := s.api.Dashboard(c.Request.Context(), s.session(c))
	if s.apiFailed(c, err) {
		return
	}
	p := Page{Title: "Dashboard", Nav: true, Active: "/dashboard"}
	if err != nil {
		p.Toast = &Toast{Kind: toastError, Message: client.UserMessage(err)}
		p.Data = DashboardView{}
		s.render(c, http.StatusBadGateway, "dashboard", p)
		return
	}
	p.Data = DashboardView{
		Summary: summary,
		Pie:     NewPieChart(summary.CategoryBreakdown, 240),
		Trend:   NewLineChart(summary.MonthlyTrend, 480, 220),
		Recent:  recentTable.Render(recentTable.View(summary.RecentExpenses, datatable.Query{Page: 1})),
	}
	s.render(c, http.StatusOK, "dashboard", p)
}
