package board

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spleiner/slussen/internal/sl"
)

// mockFetcher serves canned raw records per site.
type mockFetcher struct {
	mu             sync.Mutex
	departures     map[string][]json.RawMessage
	deviations     map[string][]json.RawMessage
	failing        map[string]error
	failingDevs    map[string]error
	delay          time.Duration
	departureCalls int32
	deviationCalls int32
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		departures:  map[string][]json.RawMessage{},
		deviations:  map[string][]json.RawMessage{},
		failing:     map[string]error{},
		failingDevs: map[string]error{},
	}
}

func toRaw[T any](values []T) []json.RawMessage {
	out := make([]json.RawMessage, len(values))
	for i, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		out[i] = data
	}
	return out
}

func (f *mockFetcher) setDepartures(site string, departures ...sl.Departure) {
	f.setRawDepartures(site, toRaw(departures)...)
}

// setRawDepartures serves entries exactly as given, malformed ones included.
func (f *mockFetcher) setRawDepartures(site string, entries ...json.RawMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.departures[site] = entries
}

func (f *mockFetcher) setDeviations(site string, deviations ...sl.Deviation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deviations[site] = toRaw(deviations)
}

func (f *mockFetcher) fail(site string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[site] = err
}

func (f *mockFetcher) failDeviations(site string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failingDevs[site] = err
}

func (f *mockFetcher) wait(ctx context.Context) error {
	if f.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(f.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *mockFetcher) Departures(ctx context.Context, siteID string) ([]json.RawMessage, error) {
	atomic.AddInt32(&f.departureCalls, 1)
	if err := f.wait(ctx); err != nil {
		return nil, fmt.Errorf("fetching departures for site %s: %w", siteID, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing[siteID]; err != nil {
		return nil, fmt.Errorf("fetching departures for site %s: %w", siteID, err)
	}
	return f.departures[siteID], nil
}

func (f *mockFetcher) Deviations(ctx context.Context, siteIDs ...string) ([]json.RawMessage, error) {
	atomic.AddInt32(&f.deviationCalls, 1)
	if err := f.wait(ctx); err != nil {
		return nil, fmt.Errorf("fetching deviations: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []json.RawMessage
	for _, site := range siteIDs {
		err := f.failing[site]
		if err == nil {
			err = f.failingDevs[site]
		}
		if err != nil {
			return nil, fmt.Errorf("fetching deviations for site %s: %w", site, err)
		}
		out = append(out, f.deviations[site]...)
	}
	return out, nil
}
