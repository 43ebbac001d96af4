package board

import (
	"context"
	"errors"
	"sync"

	"github.com/spleiner/slussen/internal/models"
)

// Notices shown instead of an empty table.
const (
	NoticeNoDepartures    = "Inga avgångar hittades. Försök hämta data igen."
	NoticeNoLinesSelected = "Inga bussar valda"
	NoticeNoMatchingRows  = "Inga avgångar hittades"
	NoticeAllSitesFailed  = "Kunde inte hämta avgångar från någon hållplats"
)

// Selection is the set of lines the user wants to see. All selects every
// line present in the current departures.
type Selection struct {
	All   bool
	Lines []string
}

// Resolve returns the concrete lines selected among available.
func (s Selection) Resolve(available []string) []string {
	if s.All {
		return available
	}
	return s.Lines
}

// Board assembles one screen for selection. It only returns an error when no
// site delivered departures; disruption failures end up as issues.
func (m *Manager) Board(ctx context.Context, selection Selection) (models.Board, error) {
	var wg sync.WaitGroup
	var departures models.DepartureSnapshot
	var disruptions models.DisruptionSnapshot
	var departuresErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		departures, departuresErr = m.Departures(ctx)
	}()
	go func() {
		defer wg.Done()
		// A failed disruptions cycle still carries its issues.
		disruptions, _ = m.Disruptions(ctx)
	}()
	wg.Wait()

	return m.compose(departures, departuresErr, disruptions, selection)
}

// SelectRows resolves selection against the departures and projects the
// matching rows. notice is set whenever there is nothing to show.
func SelectRows(departures []models.DepartureRecord, selection Selection) (rows []models.DisplayRow, selected []string, notice string) {
	rows = []models.DisplayRow{}
	if len(departures) == 0 {
		return rows, []string{}, NoticeNoDepartures
	}

	selected = selection.Resolve(ListLines(departures))
	if len(selected) == 0 {
		return rows, []string{}, NoticeNoLinesSelected
	}

	rows = FilterBySelection(departures, selected)
	if len(rows) == 0 {
		notice = NoticeNoMatchingRows
	}
	return rows, selected, notice
}

func (m *Manager) compose(departures models.DepartureSnapshot, departuresErr error, disruptions models.DisruptionSnapshot, selection Selection) (models.Board, error) {
	b := models.Board{
		Columns:     models.DisplayColumns,
		Rows:        []models.DisplayRow{},
		Disruptions: disruptions.Disruptions,
		Lines:       ListLines(departures.Departures),
		Selected:    []string{},
		Issues:      append(append([]models.Issue{}, departures.Issues...), disruptions.Issues...),
	}
	if b.Disruptions == nil {
		b.Disruptions = []models.DisruptionRecord{}
	}
	if t, ok := m.LastUpdated(); ok {
		b.LastUpdated = &t
	}

	if departuresErr != nil {
		if errors.Is(departuresErr, ErrAllSitesFailed) {
			b.Notice = NoticeAllSitesFailed
		}
		return b, departuresErr
	}

	b.Rows, b.Selected, b.Notice = SelectRows(departures.Departures, selection)
	return b, nil
}

// RefreshBoard drops the cached results and assembles a board from a fresh
// fetch of both resources.
func (m *Manager) RefreshBoard(ctx context.Context, selection Selection) (models.Board, error) {
	m.Invalidate()
	return m.Board(ctx, selection)
}
