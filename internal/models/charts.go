package models

import (
	"fmt"
	"sort"
	"strings"
)

// Chart names served under /admin/charts/.
const (
	ChartRecipes = "recipes-by-date"
	ChartUsers   = "users-by-date"
	ChartReviews = "reviews-by-date"
)

// DateCounts is a chart response: a count per ISO date.
type DateCounts map[string]int

// Point is one labelled value of a series.
type Point struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Sorted returns the counts ordered by date.
func (d DateCounts) Sorted() []Point {
	points := make([]Point, 0, len(d))
	for date, n := range d {
		points = append(points, Point{Label: date, Value: n})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Label < points[j].Label })
	return points
}

// MonthlySeries buckets counts into the twelve months of year, labelled YYYY-MM.
// Dates outside year are ignored; months without data are zero.
func (d DateCounts) MonthlySeries(year int) []Point {
	prefix := fmt.Sprintf("%04d-", year)
	byMonth := make(map[string]int, 12)
	for date, n := range d {
		if len(date) < 7 || !strings.HasPrefix(date, prefix) {
			continue
		}
		byMonth[date[:7]] += n
	}

	points := make([]Point, 12)
	for i := range points {
		label := fmt.Sprintf("%04d-%02d", year, i+1)
		points[i] = Point{Label: label, Value: byMonth[label]}
	}
	return points
}

// Total sums every count.
func (d DateCounts) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}
