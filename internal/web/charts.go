package web

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"finance_tracker/internal/domain"

	"github.com/shopspring/decimal"
)

var chartColors = []string{
	"#0088FE", "#00C49F", "#FFBB28", "#FF8042", "#A28BFE",
	"#FF6B8A", "#4BC0C0", "#9966FF", "#C9CBCF", "#8DD1E1",
}

// Slice is one category of the pie chart
type Slice struct {
	Label   string
	Amount  decimal.Decimal
	Percent float64
	Color   string
	Path    string // SVG path; empty when the slice is the whole circle
}

// PieChart is a category breakdown drawn as an SVG pie
type PieChart struct {
	Size   int
	Radius float64
	Slices []Slice
}

// Center is the x and y of the circle
func (p PieChart) Center() float64 { return float64(p.Size) / 2 }

// NewPieChart lays out slices largest first. Non-positive totals are skipped.
func NewPieChart(breakdown map[string]decimal.Decimal, size int) PieChart {
	chart := PieChart{Size: size, Radius: float64(size)/2 - 4}

	type entry struct {
		label  string
		amount decimal.Decimal
	}
	var entries []entry
	total := decimal.Zero
	for label, amount := range breakdown {
		if !amount.IsPositive() {
			continue
		}
		entries = append(entries, entry{label, amount})
		total = total.Add(amount)
	}
	if total.IsZero() {
		return chart
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].amount.Cmp(entries[j].amount); c != 0 {
			return c > 0
		}
		return entries[i].label < entries[j].label
	})

	cx, cy, r := chart.Center(), chart.Center(), chart.Radius
	start := -math.Pi / 2
	for i, e := range entries {
		fraction := e.amount.Div(total).InexactFloat64()
		end := start + fraction*2*math.Pi
		slice := Slice{
			Label:   e.label,
			Amount:  e.amount,
			Percent: math.Round(fraction*1000) / 10,
			Color:   chartColors[i%len(chartColors)],
		}
		if len(entries) > 1 {
			large := 0
			if end-start > math.Pi {
				large = 1
			}
			slice.Path = fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
				cx, cy,
				cx+r*math.Cos(start), cy+r*math.Sin(start),
				r, r, large,
				cx+r*math.Cos(end), cy+r*math.Sin(end))
		}
		chart.Slices = append(chart.Slices, slice)
		start = end
	}
	return chart
}

// Point is one month of the trend line
type Point struct {
	X, Y  float64
	Label string
	Total decimal.Decimal
}

// LineChart is the monthly trend drawn as an SVG polyline
type LineChart struct {
	Width, Height int
	Points        []Point
	Max           decimal.Decimal
}

// Polyline is the points attribute of the SVG polyline
func (l LineChart) Polyline() string {
	parts := make([]string, 0, len(l.Points))
	for _, p := range l.Points {
		parts = append(parts, fmt.Sprintf("%.2f,%.2f", p.X, p.Y))
	}
	return strings.Join(parts, " ")
}

// Baseline is the y of the x axis
func (l LineChart) Baseline() float64 { return float64(l.Height) - chartPadding }

const chartPadding = 30

// NewLineChart scales the monthly totals into a width by height box
func NewLineChart(trend []domain.MonthTotal, width, height int) LineChart {
	chart := LineChart{Width: width, Height: height, Max: decimal.Zero}
	for _, m := range trend {
		if m.Total.GreaterThan(chart.Max) {
			chart.Max = m.Total
		}
	}
	plotW := float64(width) - 2*chartPadding
	plotH := float64(height) - 2*chartPadding
	maxF := chart.Max.InexactFloat64()

	for i, m := range trend {
		x := float64(width) / 2
		if len(trend) > 1 {
			x = chartPadding + plotW*float64(i)/float64(len(trend)-1)
		}
		y := chart.Baseline()
		if maxF > 0 {
			y -= plotH * m.Total.InexactFloat64() / maxF
		}
		chart.Points = append(chart.Points, Point{X: x, Y: y, Label: m.Month, Total: m.Total})
	}
	return chart
}
