package models

import "time"

// Board is everything the shell needs to draw one screen.
type Board struct {
	Columns     []string           `json:"columns"`
	Rows        []DisplayRow       `json:"rows"`
	Disruptions []DisruptionRecord `json:"disruptions"`
	Lines       []string           `json:"lines"`
	Selected    []string           `json:"selected"`
	LastUpdated *time.Time         `json:"lastUpdated"`
	Issues      []Issue            `json:"issues"`
	Notice      string             `json:"notice,omitempty"`
}

// Status reports cache freshness for the monitored sites.
type Status struct {
	Sites               []string   `json:"sites"`
	LastUpdated         *time.Time `json:"lastUpdated"`
	DeparturesExpireAt  *time.Time `json:"departuresExpireAt"`
	DisruptionsExpireAt *time.Time `json:"disruptionsExpireAt"`
	CacheTTLSeconds     float64    `json:"cacheTtlSeconds"`
}
