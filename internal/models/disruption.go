package models

import "time"

// DisruptionRecord is a service disruption message worth showing prominently.
type DisruptionRecord struct {
	Header  string `json:"header"`
	Details string `json:"details"`
}

// DisruptionSnapshot is the outcome of one disruptions fetch cycle.
type DisruptionSnapshot struct {
	Disruptions []DisruptionRecord `json:"disruptions"`
	Issues      []Issue            `json:"issues"`
	FetchedAt   time.Time          `json:"fetchedAt"`
	SitesTotal  int                `json:"sitesTotal"`
	SitesFailed int                `json:"sitesFailed"`
}
