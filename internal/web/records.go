package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finance_tracker/internal/client"
	"finance_tracker/internal/datatable"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/form"
	"finance_tracker/internal/session"

	"github.com/gin-gonic/gin"
)

// recordKind describes how one record type is listed and edited
type recordKind[T any] struct {
	Name    string // Singular, used in messages
	Path    string
	Title   string
	Form    form.Definition
	Columns []datatable.Column[T]
	ID      func(T) uint
	Records func(*client.Client) client.Records[T]
	// Values fills the edit form from a record
	Values func(T) map[string]string
	// Build turns validated form values into a record
	Build func(form.Values) (T, error)
}

func formatID(id uint) string { return strconv.FormatUint(uint64(id), 10) }

var expenseKind = recordKind[domain.Expense]{
	Name:  "Expense",
	Path:  "/expenses",
	Title: "Expense Manager",
	Form:  form.Expense,
	Columns: []datatable.Column[domain.Expense]{
		{
			Key:      "amount",
			Label:    "Amount",
			Sortable: true,
			Value:    func(e domain.Expense) any { return e.Amount },
			Format:   func(e domain.Expense) string { return domain.FormatINR(e.Amount) },
		},
		{Key: "category", Label: "Category", Sortable: true, Value: func(e domain.Expense) any { return e.Category }},
		{Key: "description", Label: "Description", Value: func(e domain.Expense) any { return e.Description }},
		{Key: "date", Label: "Date", Sortable: true, Value: func(e domain.Expense) any { return e.Date.String() }},
		{Key: datatable.ActionsKey, Label: "Actions"},
	},
	ID:      func(e domain.Expense) uint { return e.ID },
	Records: (*client.Client).Expenses,
	Values:  form.ExpenseValues,
	Build:   form.BuildExpense,
}

var incomeKind = recordKind[domain.Income]{
	Name:  "Income",
	Path:  "/incomes",
	Title: "Income Manager",
	Form:  form.Income,
	Columns: []datatable.Column[domain.Income]{
		{
			Key:      "amount",
			Label:    "Amount",
			Sortable: true,
			Value:    func(i domain.Income) any { return i.Amount },
			Format:   func(i domain.Income) string { return domain.FormatINR(i.Amount) },
		},
		{Key: "source", Label: "Source", Sortable: true, Value: func(i domain.Income) any { return i.Source }},
		{Key: "description", Label: "Description", Value: func(i domain.Income) any { return i.Description }},
		{Key: "income_date", Label: "Date", Sortable: true, Value: func(i domain.Income) any { return i.IncomeDate.String() }},
		{Key: datatable.ActionsKey, Label: "Actions"},
	},
	ID:      func(i domain.Income) uint { return i.ID },
	Records: (*client.Client).Incomes,
	Values:  form.IncomeValues,
	Build:   form.BuildIncome,
}

// recordPages serves the list, form and actions of one record kind
type recordPages[T any] struct {
	s     *Server
	kind  recordKind[T]
	table *datatable.Table[T]
}

func newRecordPages[T any](s *Server, kind recordKind[T]) *recordPages[T] {
	table := datatable.New(func(rec T) string { return formatID(kind.ID(rec)) }, kind.Columns...)
	table.PageSize = s.pageSize
	return &recordPages[T]{s: s, kind: kind, table: table}
}

// RecordsView is the data of the records page
type RecordsView struct {
	Heading string
	Path    string
	Noun    string
	Table   datatable.View
	Form    FormView
	Editing bool
}

// SortURL links a header to its next sort, keeping the search
func (v RecordsView) SortURL(h datatable.Header) string {
	return listURL(v.Path, datatable.Query{Search: v.Table.Search, Sort: h.Next, Page: 1})
}

// PageURL links to page n of the current view
func (v RecordsView) PageURL(n int) string {
	return listURL(v.Path, datatable.Query{Search: v.Table.Search, Sort: v.Table.Sort, Page: n})
}

// EditURL opens the edit form for a row, keeping the current view
func (v RecordsView) EditURL(id string) string {
	u := listURL(v.Path, datatable.Query{Search: v.Table.Search, Sort: v.Table.Sort, Page: v.Table.Page})
	return u + "&edit=" + url.QueryEscape(id)
}

func listURL(path string, q datatable.Query) string {
	values := url.Values{}
	if q.Search != "" {
		values.Set("q", q.Search)
	}
	if q.Sort.Key != "" {
		values.Set("sort", q.Sort.Key)
		values.Set("dir", string(q.Sort.Direction))
	}
	values.Set("page", strconv.Itoa(max(q.Page, 1)))
	return path + "?" + values.Encode()
}

func parseQuery(c *gin.Context) datatable.Query {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = 1
	}
	return datatable.Query{
		Search: strings.TrimSpace(c.Query("q")),
		Sort:   datatable.SortSpec{Key: c.Query("sort"), Direction: datatable.ParseDirection(c.Query("dir"))},
		Page:   page,
	}
}

// fetch loads the collection. When ok is false the response is already
// written; otherwise a failed load yields no rows and an error toast.
func (p *recordPages[T]) fetch(c *gin.Context) (rows []T, toast *Toast, ok bool) {
	rows, err := p.kind.Records(p.s.api).List(c.Request.Context(), p.s.session(c))
	if p.s.apiFailed(c, err) {
		return nil, nil, false
	}
	if err != nil {
		return nil, &Toast{Kind: toastError, Message: client.UserMessage(err)}, true
	}
	return rows, nil, true
}

func (p *recordPages[T]) renderList(c *gin.Context, status int, rows []T, q datatable.Query, f *form.Form, editID string, toast *Toast) {
	action := p.kind.Path
	submit := "Add " + p.kind.Name
	if editID != "" {
		action = p.kind.Path + "/" + editID
		submit = "Update " + p.kind.Name
	}
	fv := newFormView(p.kind.Form.Name, action, submit, f)
	if editID != "" {
		fv.Cancel = p.kind.Path
	}
	// Keep the table state across the form post
	fv.Hidden["q"] = q.Search
	fv.Hidden["sort"] = q.Sort.Key
	fv.Hidden["dir"] = string(q.Sort.Direction)
	fv.Hidden["page"] = strconv.Itoa(q.Page)

	v := RecordsView{
		Heading: p.kind.Title,
		Path:    p.kind.Path,
		Noun:    strings.ToLower(p.kind.Name),
		Table:   p.table.Render(p.table.View(rows, q)),
		Form:    fv,
		Editing: editID != "",
	}
	p.s.render(c, status, "records", Page{Title: p.kind.Title, Nav: true, Active: p.kind.Path, Toast: toast, Data: v})
}

// list shows the table, with the edit form filled when ?edit= names a row
func (p *recordPages[T]) list(c *gin.Context) {
	rows, toast, ok := p.fetch(c)
	if !ok {
		return
	}

	q := parseQuery(c)
	f := p.kind.Form.New()
	editID := c.Query("edit")
	if editID != "" {
		table := *p.table
		table.OnEdit = func(rec T) error {
			f.Fill(p.kind.Values(rec))
			return nil
		}
		if err := table.Edit(rows, editID); err != nil {
			toast = &Toast{Kind: toastError, Message: p.kind.Name + " not found"}
			editID = ""
		}
	}
	p.renderList(c, http.StatusOK, rows, q, f, editID, toast)
}

func queryFromPost(values map[string]string) datatable.Query {
	page, err := strconv.Atoi(values["page"])
	if err != nil {
		page = 1
	}
	return datatable.Query{
		Search: values["q"],
		Sort:   datatable.SortSpec{Key: values["sort"], Direction: datatable.ParseDirection(values["dir"])},
		Page:   page,
	}
}

func (p *recordPages[T]) redirectToList(c *gin.Context, q datatable.Query) {
	c.Redirect(http.StatusFound, listURL(p.kind.Path, q))
}

// save validates the posted form and runs call with the built record
func (p *recordPages[T]) save(c *gin.Context, editID string, call func(ctx context.Context, s *session.Session, rec T) (string, error)) {
	values := postedValues(c)
	q := queryFromPost(values)
	f := p.kind.Form.New()
	f.Fill(values)

	err := f.Submit(c.Request.Context(), func(ctx context.Context, v form.Values) error {
		rec, err := p.kind.Build(v)
		if err != nil {
			return &client.APIError{Status: http.StatusBadRequest, Message: "Invalid " + strings.ToLower(p.kind.Name)}
		}
		msg, err := call(ctx, p.s.session(c), rec)
		if err != nil {
			return err
		}
		setFlash(c, toastSuccess, msg)
		return nil
	})
	if err == nil {
		p.redirectToList(c, q)
		return
	}
	if !errors.Is(err, form.ErrInvalid) && p.s.apiFailed(c, err) {
		return
	}
	status, toast := submitFailure(f, err)
	rows, listToast, ok := p.fetch(c)
	if !ok {
		return
	}
	if toast == nil {
		toast = listToast
	}
	p.renderList(c, status, rows, q, f, editID, toast)
}

func (p *recordPages[T]) create(c *gin.Context) {
	p.save(c, "", func(ctx context.Context, s *session.Session, rec T) (string, error) {
		_, msg, err := p.kind.Records(p.s.api).Create(ctx, s, rec)
		return msg, err
	})
}

func (p *recordPages[T]) update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		setFlash(c, toastError, p.kind.Name+" not found")
		c.Redirect(http.StatusFound, p.kind.Path)
		return
	}
	p.save(c, c.Param("id"), func(ctx context.Context, s *session.Session, rec T) (string, error) {
		_, msg, err := p.kind.Records(p.s.api).Update(ctx, s, uint(id), rec)
		return msg, err
	})
}

// remove deletes a row of the current collection
func (p *recordPages[T]) remove(c *gin.Context) {
	q := queryFromPost(postedValues(c))
	rows, toast, ok := p.fetch(c)
	if !ok {
		return
	}
	if toast != nil {
		setFlash(c, toast.Kind, toast.Message)
		p.redirectToList(c, q)
		return
	}

	table := *p.table
	var msg string
	table.OnDelete = func(id string) error {
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return datatable.ErrRowNotFound
		}
		msg, err = p.kind.Records(p.s.api).Delete(c.Request.Context(), p.s.session(c), uint(n))
		return err
	}
	err := table.Delete(rows, c.Param("id"))
	switch {
	case err == nil:
		setFlash(c, toastSuccess, msg)
	case errors.Is(err, datatable.ErrRowNotFound):
		setFlash(c, toastError, p.kind.Name+" not found")
	case p.s.apiFailed(c, err):
		return
	default:
		setFlash(c, toastError, client.UserMessage(err))
	}
	p.redirectToList(c, q)
}
