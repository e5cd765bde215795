package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"finance_tracker/internal/client"
	"finance_tracker/internal/datatable"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/form"
)

// recordCmd is the list, add and delete surface of one record kind
type recordCmd[T any] struct {
	name    string // Singular, used in messages
	def     form.Definition
	columns []datatable.Column[T]
	id      func(T) uint
	records func(*client.Client) client.Records[T]
	build   func(form.Values) (T, error)
}

var expenseCmd = recordCmd[domain.Expense]{
	name: "Expense",
	def:  form.Expense,
	columns: []datatable.Column[domain.Expense]{
		{Key: "id", Label: "ID", Sortable: true, Value: func(e domain.Expense) any { return e.ID }},
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
	},
	id:      func(e domain.Expense) uint { return e.ID },
	records: (*client.Client).Expenses,
	build:   form.BuildExpense,
}

var incomeCmd = recordCmd[domain.Income]{
	name: "Income",
	def:  form.Income,
	columns: []datatable.Column[domain.Income]{
		{Key: "id", Label: "ID", Sortable: true, Value: func(i domain.Income) any { return i.ID }},
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
	},
	id:      func(i domain.Income) uint { return i.ID },
	records: (*client.Client).Incomes,
	build:   form.BuildIncome,
}

func (r recordCmd[T]) noun() string { return strings.ToLower(r.name) }

func (r recordCmd[T]) table(pageSize int) *datatable.Table[T] {
	t := datatable.New(func(rec T) string { return strconv.FormatUint(uint64(r.id(rec)), 10) }, r.columns...)
	if pageSize > 0 {
		t.PageSize = pageSize
	}
	return t
}

func (r recordCmd[T]) run(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "add":
			return r.add(ctx, a, args[1:])
		case "delete":
			return r.remove(ctx, a, args[1:])
		case "list":
			args = args[1:]
		}
	}
	return r.list(ctx, a, args)
}

func (r recordCmd[T]) list(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet(r.noun()+"s", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	search := fs.String("q", "", "Search every column")
	sortKey := fs.String("sort", "", "Column to sort by")
	desc := fs.Bool("desc", false, "Sort descending")
	page := fs.Int("page", 1, "Page to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	table := r.table(a.pageSize)
	q := datatable.Query{Search: strings.TrimSpace(*search), Page: *page}
	if *sortKey != "" {
		c, ok := table.Column(*sortKey)
		if !ok || !c.Sortable {
			return fmt.Errorf("cannot sort by %q", *sortKey)
		}
		q.Sort = datatable.SortSpec{Key: *sortKey, Direction: datatable.Asc}
		if *desc {
			q.Sort.Direction = datatable.Desc
		}
	}

	rows, err := r.records(a.api).List(ctx, a.sess)
	if err != nil {
		return err
	}
	return printTable(a.stdout, table.Render(table.View(rows, q)), r.noun())
}

func (r recordCmd[T]) add(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet(r.noun()+"s add", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	flags := make(map[string]*string, len(r.def.Fields))
	for _, field := range r.def.Fields {
		def := ""
		if field.Type == form.Date {
			def = time.Now().Format(time.DateOnly)
		}
		flags[field.Name] = fs.String(field.Name, def, field.Label)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	values := make(map[string]string, len(flags))
	for name, v := range flags {
		values[name] = *v
	}
	return submit(ctx, r.def, values, func(ctx context.Context, v form.Values) error {
		rec, err := r.build(v)
		if err != nil {
			return err
		}
		created, msg, err := r.records(a.api).Create(ctx, a.sess, rec)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s (id %d)\n", msg, r.id(created))
		return nil
	})
}

// remove deletes a row of the current collection
func (r recordCmd[T]) remove(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet(r.noun()+"s delete", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	id := fs.String("id", "", "ID of the "+r.noun())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("missing required flag: id")
	}

	rows, err := r.records(a.api).List(ctx, a.sess)
	if err != nil {
		return err
	}
	table := r.table(a.pageSize)
	var msg string
	table.OnDelete = func(id string) error {
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return err
		}
		msg, err = r.records(a.api).Delete(ctx, a.sess, uint(n))
		return err
	}
	if err := table.Delete(rows, *id); err != nil {
		if errors.Is(err, datatable.ErrRowNotFound) {
			return fmt.Errorf("%s not found", r.name)
		}
		return err
	}
	fmt.Fprintln(a.stdout, msg)
	return nil
}

// printTable writes a rendered page as aligned columns
func printTable(out io.Writer, v datatable.View, noun string) error {
	if v.Empty() {
		_, err := fmt.Fprintf(out, "No %s records found\n", noun)
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	labels := make([]string, 0, len(v.Headers))
	for _, h := range v.Headers {
		label := h.Label
		switch {
		case h.Desc:
			label += " v"
		case h.Active:
			label += " ^"
		}
		labels = append(labels, label)
	}
	fmt.Fprintln(w, strings.Join(labels, "\t"))
	for _, row := range v.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = strings.ReplaceAll(c, "\t", " ")
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Page %d of %d (%d records)\n", v.Page, v.PageCount, v.Total)
	return err
}
