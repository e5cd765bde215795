// Package datatable turns an in-memory collection into a searchable, sortable,
// paginated view. Building a view never fails and never mutates the input.
package datatable

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// ActionsKey is the key of the synthetic actions column. It is never
// searched or sorted.
const ActionsKey = "actions"

// DefaultPageSize is used when a table has no page size
const DefaultPageSize = 5

// ErrRowNotFound is returned when an action targets an id not in the data
var ErrRowNotFound = errors.New("row not found")

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps anything other than "desc" to Asc
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// SortSpec is the active sort key and direction
type SortSpec struct {
	Key       string
	Direction Direction
}

// Toggle returns the sort after a click on key's header: the active key
// flips between ascending and descending, any other key starts ascending.
func (s SortSpec) Toggle(key string) SortSpec {
	if s.Key == key && s.Direction != Desc {
		return SortSpec{Key: key, Direction: Desc}
	}
	return SortSpec{Key: key, Direction: Asc}
}

// Column describes one table column
type Column[T any] struct {
	Key      string
	Label    string
	Sortable bool
	// Value returns the raw value used for searching and sorting
	Value func(T) any
	// Format renders the cell; when nil the raw value is printed
	Format func(T) string
}

// Table is a column layout plus row actions for records of type T
type Table[T any] struct {
	Columns  []Column[T]
	PageSize int
	// ID returns a row's identity, used by the actions
	ID       func(T) string
	OnEdit   func(row T) error
	OnDelete func(id string) error
}

// Query selects what View shows
type Query struct {
	Search string
	Sort   SortSpec
	Page   int
}

// Page is one page of the filtered and sorted rows
type Page[T any] struct {
	Rows      []T
	Number    int // Effective 1-based page after clamping
	PageCount int
	Total     int // Rows matching the search
	PageSize  int
	Sort      SortSpec
	Search    string
}

// New creates a table with the default page size
func New[T any](id func(T) string, columns ...Column[T]) *Table[T] {
	return &Table[T]{Columns: columns, PageSize: DefaultPageSize, ID: id}
}

func (t *Table[T]) pageSize() int {
	if t.PageSize < 1 {
		return DefaultPageSize
	}
	return t.PageSize
}

// Column returns the column with key
func (t *Table[T]) Column(key string) (Column[T], bool) {
	for _, c := range t.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

// ToggleSort applies SortSpec.Toggle when key names a sortable column and
// returns s unchanged otherwise.
func (t *Table[T]) ToggleSort(s SortSpec, key string) SortSpec {
	c, ok := t.Column(key)
	if !ok || !c.Sortable || c.Value == nil || key == ActionsKey {
		return s
	}
	return s.Toggle(key)
}

// View filters, sorts and paginates data
func (t *Table[T]) View(data []T, q Query) Page[T] {
	rows := t.Sort(t.Filter(data, q.Search), q.Sort)
	p := Paginate(rows, q.Page, t.pageSize())
	p.Sort = q.Sort
	p.Search = q.Search
	return p
}

// Filter keeps the rows where any searchable column contains term,
// case-insensitively. An empty term keeps every row.
func (t *Table[T]) Filter(data []T, term string) []T {
	if term == "" {
		return slices.Clone(data)
	}
	needle := strings.ToLower(term)
	out := make([]T, 0, len(data))
	for _, row := range data {
		if t.matches(row, needle) {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table[T]) matches(row T, needle string) bool {
	for _, c := range t.Columns {
		if c.Key == ActionsKey || c.Value == nil {
			continue
		}
		v := c.Value(row)
		if isNil(v) {
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
			return true
		}
	}
	return false
}

// Sort returns data stably sorted by the column s names. Ties keep their
// input order in both directions. Unknown or unsortable keys leave the
// order as is.
func (t *Table[T]) Sort(data []T, s SortSpec) []T {
	out := slices.Clone(data)
	c, ok := t.Column(s.Key)
	if !ok || !c.Sortable || c.Value == nil || s.Key == ActionsKey {
		return out
	}
	sign := 1
	if s.Direction == Desc {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return sign * Compare(c.Value(a), c.Value(b))
	})
	return out
}

// Paginate returns page number of rows, clamped to [1, max(1, pageCount)]
func Paginate[T any](rows []T, number, size int) Page[T] {
	if size < 1 {
		size = DefaultPageSize
	}
	count := (len(rows) + size - 1) / size
	number = max(1, min(number, count))
	start := min((number-1)*size, len(rows))
	end := min(start+size, len(rows))
	return Page[T]{
		Rows:      rows[start:end],
		Number:    number,
		PageCount: count,
		Total:     len(rows),
		PageSize:  size,
	}
}

// Edit passes the row with id to OnEdit
func (t *Table[T]) Edit(data []T, id string) error {
	row, ok := t.find(data, id)
	if !ok {
		return ErrRowNotFound
	}
	if t.OnEdit == nil {
		return nil
	}
	return t.OnEdit(row)
}

// Delete passes id to OnDelete when a row with that id exists
func (t *Table[T]) Delete(data []T, id string) error {
	if _, ok := t.find(data, id); !ok {
		return ErrRowNotFound
	}
	if t.OnDelete == nil {
		return nil
	}
	return t.OnDelete(id)
}

func (t *Table[T]) find(data []T, id string) (T, bool) {
	var zero T
	if t.ID == nil {
		return zero, false
	}
	for _, row := range data {
		if t.ID(row) == id {
			return row, true
		}
	}
	return zero, false
}

// Cell renders a row's value for a column
func (t *Table[T]) Cell(c Column[T], row T) string {
	if c.Format != nil {
		return c.Format(row)
	}
	if c.Value == nil {
		return ""
	}
	v := c.Value(row)
	if isNil(v) {
		return ""
	}
	return fmt.Sprint(v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
