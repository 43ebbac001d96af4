package board

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spleiner/slussen/internal/appconf"
	"github.com/spleiner/slussen/internal/models"
	"github.com/spleiner/slussen/internal/sl"
	"github.com/spleiner/slussen/internal/utils"
)

const (
	glasbruksgatan     = "Glasbruksgatan"
	slussbrogatanLabel = " (Slussbrogatan)"
)

// ErrMissingField marks a raw record that lacks a required key.
var ErrMissingField = errors.New("missing field")

// Rules holds the business rules that turn raw SL records into board records.
type Rules struct {
	lines             map[string]bool
	glasbruksgatan    map[string]bool
	slussbrogatan     map[string]bool
	priorityThreshold int
	language          string
}

// NewRules builds Rules from the board configuration.
func NewRules(cfg appconf.Board) Rules {
	return Rules{
		lines:             toSet(cfg.Lines),
		glasbruksgatan:    toSet(cfg.GlasbruksgatanLines),
		slussbrogatan:     toSet(cfg.SlussbrogatanLines),
		priorityThreshold: cfg.PriorityThreshold,
		language:          cfg.Language,
	}
}

// Monitored reports whether line is on the allow-list.
func (r Rules) Monitored(line string) bool {
	return r.lines[line]
}

// StopPoint applies the per-line stop label overrides.
func (r Rules) StopPoint(line, raw string) string {
	switch {
	case r.glasbruksgatan[line]:
		return glasbruksgatan
	case r.slussbrogatan[line]:
		return raw + slussbrogatanLabel
	default:
		return raw
	}
}

// NormalizeDeparture maps one raw departure. ok is false for lines that are not
// monitored; err is set when a required key is missing.
func (r Rules) NormalizeDeparture(raw sl.Departure) (models.DepartureRecord, bool, error) {
	if raw.Line == nil || raw.Line.Designation == nil {
		return models.DepartureRecord{}, false, missing("line.designation")
	}
	line := *raw.Line.Designation
	if !r.Monitored(line) {
		return models.DepartureRecord{}, false, nil
	}
	if raw.Destination == nil {
		return models.DepartureRecord{}, false, missing("destination")
	}
	if raw.Display == nil {
		return models.DepartureRecord{}, false, missing("display")
	}

	stopPoint := ""
	if raw.StopPoint != nil && raw.StopPoint.Designation != nil {
		stopPoint = *raw.StopPoint.Designation
	}

	return models.DepartureRecord{
		Line:         line,
		Destination:  *raw.Destination,
		DisplayText:  *raw.Display,
		ExpectedTime: utils.ParseExpectedTime(raw.Expected),
		StopPoint:    r.StopPoint(line, stopPoint),
	}, true, nil
}

// NormalizeDisruptionMessage keeps a message variant only when its deviation
// scores above the threshold and the variant is in the board language.
func (r Rules) NormalizeDisruptionMessage(deviation sl.Deviation, message sl.MessageVariant) (models.DisruptionRecord, bool, error) {
	if !utils.ExceedsThreshold(deviation.Priority.Score(), r.priorityThreshold) {
		return models.DisruptionRecord{}, false, nil
	}
	if message.Language == nil || *message.Language != r.language {
		return models.DisruptionRecord{}, false, nil
	}
	if message.Header == nil {
		return models.DisruptionRecord{}, false, missing("header")
	}
	if message.Details == nil {
		return models.DisruptionRecord{}, false, missing("details")
	}
	return models.DisruptionRecord{
		Header:  *message.Header,
		Details: *message.Details,
	}, true, nil
}

// NormalizeDepartures maps a batch of raw departure entries from one site.
// Entries that fail to decode or lack a required key are skipped and
// reported as issues; the rest of the batch is still used.
func (r Rules) NormalizeDepartures(site string, raws []json.RawMessage) ([]models.DepartureRecord, []models.Issue) {
	records := make([]models.DepartureRecord, 0, len(raws))
	var issues []models.Issue
	for i, entry := range raws {
		raw, err := sl.ParseDeparture(entry)
		if err != nil {
			if line, ok := sl.DepartureLine(entry); ok && !r.Monitored(line) {
				continue
			}
			issues = append(issues, malformed(site, fmt.Sprintf("departure %d: %v", i, err)))
			continue
		}
		record, ok, err := r.NormalizeDeparture(raw)
		if err != nil {
			issues = append(issues, malformed(site, fmt.Sprintf("departure %d: %v", i, err)))
			continue
		}
		if ok {
			records = append(records, record)
		}
	}
	return records, issues
}

// NormalizeDisruptions maps a batch of raw deviation entries from one site,
// message by message.
func (r Rules) NormalizeDisruptions(site string, raws []json.RawMessage) ([]models.DisruptionRecord, []models.Issue) {
	var records []models.DisruptionRecord
	var issues []models.Issue
	for i, raw := range raws {
		entry, err := sl.ParseDeviationEntry(raw)
		if err != nil {
			issues = append(issues, malformed(site, fmt.Sprintf("deviation %d: %v", i, err)))
			continue
		}
		deviation := sl.Deviation{Priority: entry.Priority}
		for j, rawMessage := range entry.MessageVariants {
			message, err := sl.ParseMessageVariant(rawMessage)
			if err == nil {
				var record models.DisruptionRecord
				var ok bool
				record, ok, err = r.NormalizeDisruptionMessage(deviation, message)
				if ok {
					records = append(records, record)
				}
			}
			if err != nil {
				issues = append(issues, malformed(site, fmt.Sprintf("deviation %d message %d: %v", i, j, err)))
			}
		}
	}
	return records, issues
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

func malformed(site, message string) models.Issue {
	return models.Issue{Kind: models.IssueMalformedRecord, Site: site, Message: message}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
