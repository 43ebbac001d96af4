package utils

import "time"

// expectedTimeLayouts are tried in order. Layouts without a zone parse as UTC.
var expectedTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseExpectedTime parses an ISO-8601 timestamp into a UTC instant.
// It returns nil for nil, empty or unparsable input.
func ParseExpectedTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range expectedTimeLayouts {
		t, err := time.Parse(layout, *s)
		if err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
