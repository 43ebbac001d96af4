package board

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/spleiner/slussen/internal/models"
)

// SortKey orders line designations numerically: every decimal digit is
// concatenated left to right and parsed. Lines without digits get math.MaxInt.
func SortKey(line string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, line)
	if digits == "" {
		return math.MaxInt
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return math.MaxInt
	}
	return n
}

// CompareLines orders by SortKey, then by the designation itself.
func CompareLines(a, b string) int {
	return cmp.Or(cmp.Compare(SortKey(a), SortKey(b)), strings.Compare(a, b))
}

// ListLines returns the distinct lines present in departures, sorted with CompareLines.
func ListLines(departures []models.DepartureRecord) []string {
	seen := make(map[string]bool)
	lines := []string{}
	for _, d := range departures {
		if seen[d.Line] {
			continue
		}
		seen[d.Line] = true
		lines = append(lines, d.Line)
	}
	slices.SortFunc(lines, CompareLines)
	return lines
}

// FilterBySelection keeps departures whose line is selected, in input order,
// projected to display rows.
func FilterBySelection(departures []models.DepartureRecord, selected []string) []models.DisplayRow {
	rows := []models.DisplayRow{}
	if len(selected) == 0 {
		return rows
	}
	want := toSet(selected)
	for _, d := range departures {
		if want[d.Line] {
			rows = append(rows, models.NewDisplayRow(d))
		}
	}
	return rows
}

// SortDepartures orders by expected time, earliest first. Departures without
// an expected time go last; ties keep their relative order.
func SortDepartures(departures []models.DepartureRecord) {
	slices.SortStableFunc(departures, func(a, b models.DepartureRecord) int {
		switch {
		case a.ExpectedTime == nil && b.ExpectedTime == nil:
			return 0
		case a.ExpectedTime == nil:
			return 1
		case b.ExpectedTime == nil:
			return -1
		default:
			return a.ExpectedTime.Compare(*b.ExpectedTime)
		}
	})
}
