package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Sentinel errors returned by Load and the query methods. Callers match them
// with errors.Is; the wrapped message carries the offending detail.
var (
	ErrEmptyDataset     = errors.New("empty dataset")
	ErrUnknownStation   = errors.New("unknown station")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// WaterLevelReading is a single river level observation in millimetres.
type WaterLevelReading struct {
	StationID string    `json:"station_id"`
	Timestamp time.Time `json:"timestamp"`
	Height    float64   `json:"height_mm"`
}

// RainfallReading is a single precipitation observation in millimetres,
// carrying the station coordinates the map layer needs.
type RainfallReading struct {
	StationID     string    `json:"station_id"`
	Timestamp     time.Time `json:"timestamp"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Precipitation float64   `json:"precipitation_mm"`
}

// DateRange is an inclusive [Start, End] window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate rejects ranges whose start falls after their end.
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: range start %s is after end %s",
			ErrInvalidParameter, r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Handle is an immutable snapshot of both datasets grouped per station and
// sorted by timestamp. Readings with equal timestamps keep their input order.
type Handle struct {
	water    map[string][]WaterLevelReading
	rain     map[string][]RainfallReading
	waterIDs []string
	rainIDs  []string
	span     DateRange
	nWater   int
	nRain    int
}

// Load indexes both datasets and returns the query handle. Either dataset
// being empty is an error: the dashboard has nothing to show without both.
// Inputs are assumed already parsed; validating the raw source format is the
// loader's job.
func Load(water []WaterLevelReading, rain []RainfallReading) (*Handle, error) {
	if len(water) == 0 {
		return nil, fmt.Errorf("%w: no water level readings", ErrEmptyDataset)
	}
	if len(rain) == 0 {
		return nil, fmt.Errorf("%w: no rainfall readings", ErrEmptyDataset)
	}

	h := &Handle{
		water:  make(map[string][]WaterLevelReading),
		rain:   make(map[string][]RainfallReading),
		nWater: len(water),
		nRain:  len(rain),
	}

	for _, r := range water {
		h.water[r.StationID] = append(h.water[r.StationID], r)
	}
	for _, r := range rain {
		h.rain[r.StationID] = append(h.rain[r.StationID], r)
	}

	h.waterIDs = make([]string, 0, len(h.water))
	for id, group := range h.water {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})
		h.waterIDs = append(h.waterIDs, id)
	}
	sort.Strings(h.waterIDs)

	h.rainIDs = make([]string, 0, len(h.rain))
	for id, group := range h.rain {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})
		h.rainIDs = append(h.rainIDs, id)
	}
	sort.Strings(h.rainIDs)

	h.span = DateRange{Start: water[0].Timestamp, End: water[0].Timestamp}
	for _, r := range water {
		h.span = h.span.extend(r.Timestamp)
	}
	for _, r := range rain {
		h.span = h.span.extend(r.Timestamp)
	}

	return h, nil
}

func (r DateRange) extend(t time.Time) DateRange {
	if t.Before(r.Start) {
		r.Start = t
	}
	if t.After(r.End) {
		r.End = t
	}
	return r
}

// FullDataRange returns the min/max timestamp across both datasets combined.
// The dashboard seeds its date filter with it.
func (h *Handle) FullDataRange() DateRange {
	return h.span
}

// WaterStations lists the station ids of the water level dataset, sorted.
func (h *Handle) WaterStations() []string {
	out := make([]string, len(h.waterIDs))
	copy(out, h.waterIDs)
	return out
}

// RainfallStation describes one station of the rainfall dataset.
type RainfallStation struct {
	StationID    string  `json:"station_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	ReadingCount int     `json:"reading_count"`
}

// RainfallStations lists rainfall station metadata, sorted by station id.
// Coordinates come from the station's first reading; they are constant per
// station in the source data.
func (h *Handle) RainfallStations() []RainfallStation {
	out := make([]RainfallStation, 0, len(h.rainIDs))
	for _, id := range h.rainIDs {
		group := h.rain[id]
		out = append(out, RainfallStation{
			StationID:    id,
			Latitude:     group[0].Latitude,
			Longitude:    group[0].Longitude,
			ReadingCount: len(group),
		})
	}
	return out
}

// Size returns the loaded reading counts (water, rainfall).
func (h *Handle) Size() (int, int) {
	return h.nWater, h.nRain
}

func waterInRange(group []WaterLevelReading, r DateRange) []WaterLevelReading {
	lo := sort.Search(len(group), func(i int) bool { return !group[i].Timestamp.Before(r.Start) })
	hi := sort.Search(len(group), func(i int) bool { return group[i].Timestamp.After(r.End) })
	return group[lo:hi]
}

func rainInRange(group []RainfallReading, r DateRange) []RainfallReading {
	lo := sort.Search(len(group), func(i int) bool { return !group[i].Timestamp.Before(r.Start) })
	hi := sort.Search(len(group), func(i int) bool { return group[i].Timestamp.After(r.End) })
	return group[lo:hi]
}
