package sl

import (
	"encoding/json"

	"github.com/spleiner/slussen/internal/utils"
)

// DeparturesResponse is the body of /sites/{siteId}/departures. Entries are
// kept raw and decoded one by one, so a single bad entry stays contained.
type DeparturesResponse struct {
	Departures []json.RawMessage `json:"departures"`
}

// Departure is one raw departure. Pointer fields distinguish a missing key
// from an empty value.
type Departure struct {
	Line        *Line      `json:"line"`
	Destination *string    `json:"destination"`
	Display     *string    `json:"display"`
	Expected    *string    `json:"expected"`
	StopPoint   *StopPoint `json:"stop_point"`
}

type Line struct {
	Designation *string `json:"designation"`
}

type StopPoint struct {
	Designation *string `json:"designation"`
}

// Deviation is a fully decoded entry of the /messages response.
type Deviation struct {
	Priority        *Priority        `json:"priority"`
	MessageVariants []MessageVariant `json:"message_variants"`
}

// DeviationEntry is a deviation whose message variants are still raw.
type DeviationEntry struct {
	Priority        *Priority         `json:"priority"`
	MessageVariants []json.RawMessage `json:"message_variants"`
}

// lineOnly is the smallest departure shape that still names its line.
type lineOnly struct {
	Line *struct {
		Designation *string `json:"designation"`
	} `json:"line"`
}

type Priority struct {
	ImportanceLevel *int `json:"importance_level"`
	InfluenceLevel  *int `json:"influence_level"`
	UrgencyLevel    *int `json:"urgency_level"`
}

// Score multiplies the severity levels, treating missing ones as zero.
func (p *Priority) Score() int {
	if p == nil {
		return 0
	}
	return utils.PriorityScore(intOrZero(p.ImportanceLevel), intOrZero(p.InfluenceLevel), intOrZero(p.UrgencyLevel))
}

type MessageVariant struct {
	Header   *string `json:"header"`
	Details  *string `json:"details"`
	Language *string `json:"language"`
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// ParseDeparture decodes one raw departure entry.
func ParseDeparture(raw json.RawMessage) (Departure, error) {
	var d Departure
	if err := json.Unmarshal(raw, &d); err != nil {
		return Departure{}, err
	}
	return d, nil
}

// DepartureLine extracts only line.designation from an entry that may not
// decode as a whole.
func DepartureLine(raw json.RawMessage) (string, bool) {
	var l lineOnly
	if err := json.Unmarshal(raw, &l); err != nil || l.Line == nil || l.Line.Designation == nil {
		return "", false
	}
	return *l.Line.Designation, true
}

// ParseDeviationEntry decodes one raw deviation, leaving its message variants raw.
func ParseDeviationEntry(raw json.RawMessage) (DeviationEntry, error) {
	var e DeviationEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return DeviationEntry{}, err
	}
	return e, nil
}

// ParseMessageVariant decodes one raw message variant.
func ParseMessageVariant(raw json.RawMessage) (MessageVariant, error) {
	var m MessageVariant
	if err := json.Unmarshal(raw, &m); err != nil {
		return MessageVariant{}, err
	}
	return m, nil
}
