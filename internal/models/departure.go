package models

import "time"

// DepartureRecord is one normalized bus departure from a monitored site.
type DepartureRecord struct {
	Line         string     `json:"line"`
	Destination  string     `json:"destination"`
	DisplayText  string     `json:"displayText"`
	ExpectedTime *time.Time `json:"expectedTime"`
	StopPoint    string     `json:"stopPoint"`
}

// DisplayRow is the projection of a departure that the board shows.
type DisplayRow struct {
	Line        string `json:"line"`
	Destination string `json:"destination"`
	Departure   string `json:"departure"`
	StopPoint   string `json:"stopPoint"`
}

// DisplayColumns are the column headings of the departure table, in order.
var DisplayColumns = []string{"Linje", "Destination", "Avgår", "Hållplats"}

// NewDisplayRow projects a departure into its four display columns.
func NewDisplayRow(d DepartureRecord) DisplayRow {
	return DisplayRow{
		Line:        d.Line,
		Destination: d.Destination,
		Departure:   d.DisplayText,
		StopPoint:   d.StopPoint,
	}
}

// DepartureSnapshot is the outcome of one departures fetch cycle.
type DepartureSnapshot struct {
	Departures  []DepartureRecord `json:"departures"`
	Issues      []Issue           `json:"issues"`
	FetchedAt   time.Time         `json:"fetchedAt"`
	SitesTotal  int               `json:"sitesTotal"`
	SitesFailed int               `json:"sitesFailed"`
}
