package datatable

// Header is a rendered column header
type Header struct {
	Key      string
	Label    string
	Sortable bool
	Active   bool // The view is sorted by this column
	Desc     bool // Active and descending
	Next     SortSpec
}

// Row is a rendered row
type Row struct {
	ID    string
	Cells []string // One per non-action column, in column order
}

// View is a page rendered to strings, ready for templates and terminals
type View struct {
	Headers    []Header
	Rows       []Row
	HasActions bool
	Page       int
	PageCount  int
	Total      int
	Search     string
	Sort       SortSpec
}

// Render turns a page into display strings
func (t *Table[T]) Render(p Page[T]) View {
	v := View{
		Page:      p.Number,
		PageCount: p.PageCount,
		Total:     p.Total,
		Search:    p.Search,
		Sort:      p.Sort,
	}
	var cols []Column[T]
	for _, c := range t.Columns {
		if c.Key == ActionsKey {
			v.HasActions = true
			continue
		}
		cols = append(cols, c)
		h := Header{Key: c.Key, Label: c.Label, Sortable: c.Sortable && c.Value != nil}
		h.Active = p.Sort.Key == c.Key
		h.Desc = h.Active && p.Sort.Direction == Desc
		h.Next = t.ToggleSort(p.Sort, c.Key)
		v.Headers = append(v.Headers, h)
	}
	for _, row := range p.Rows {
		r := Row{Cells: make([]string, 0, len(cols))}
		if t.ID != nil {
			r.ID = t.ID(row)
		}
		for _, c := range cols {
			r.Cells = append(r.Cells, t.Cell(c, row))
		}
		v.Rows = append(v.Rows, r)
	}
	return v
}

// Empty reports whether there is nothing to show
func (v View) Empty() bool { return len(v.Rows) == 0 }

// ShowPagination reports whether page controls are needed
func (v View) ShowPagination() bool { return v.PageCount > 1 }

func (v View) HasPrev() bool { return v.Page > 1 }
func (v View) HasNext() bool { return v.Page < v.PageCount }
func (v View) PrevPage() int { return v.Page - 1 }
func (v View) NextPage() int { return v.Page + 1 }

// Pages lists the page numbers for page buttons
func (v View) Pages() []int {
	pages := make([]int, v.PageCount)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
