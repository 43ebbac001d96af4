package models

// IssueKind classifies a non-fatal problem met while fetching or normalizing.
type IssueKind string

const (
	IssueSiteFetchFailed IssueKind = "site_fetch_failed"
	IssueMalformedRecord IssueKind = "malformed_record"
)

// Issue is surfaced to the shell as a warning. It never stops a fetch cycle.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Site    string    `json:"site,omitempty"`
	Message string    `json:"message"`
}
