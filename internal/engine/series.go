package engine

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// WaterLevelPoint is one sample of a level series.
type WaterLevelPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Height    float64   `json:"height_mm"`
}

// WaterLevelSeries is a chart-ready slice of readings inside a range.
// Accelerations[i] is the second difference centred on Points[i+1], so the
// slice holds len(Points)-2 samples and is empty below three points.
type WaterLevelSeries struct {
	StationID     string            `json:"station_id,omitempty"`
	Points        []WaterLevelPoint `json:"points"`
	Accelerations []float64         `json:"accelerations"`
}

// WaterLevelSeries returns one station's readings inside r together with the
// derived acceleration samples. A window with no readings is an empty series,
// not an error.
func (h *Handle) WaterLevelSeries(stationID string, r DateRange) (WaterLevelSeries, error) {
	if err := r.Validate(); err != nil {
		return WaterLevelSeries{}, err
	}

	group, ok := h.water[stationID]
	if !ok {
		return WaterLevelSeries{}, fmt.Errorf("%w: no water level readings for %q", ErrUnknownStation, stationID)
	}

	window := waterInRange(group, r)
	series := WaterLevelSeries{
		StationID: stationID,
		Points:    make([]WaterLevelPoint, 0, len(window)),
	}
	heights := make([]float64, 0, len(window))
	for _, reading := range window {
		series.Points = append(series.Points, WaterLevelPoint{Timestamp: reading.Timestamp, Height: reading.Height})
		heights = append(heights, reading.Height)
	}
	series.Accelerations = secondDifferences(heights)
	return series, nil
}

// AggregationMethod selects how simultaneous readings from different stations
// collapse into a single value.
type AggregationMethod string

const (
	MethodMedian AggregationMethod = "median"
	MethodMean   AggregationMethod = "mean"
)

// AggregatedWaterLevelSeries collapses all stations into one city-wide series
// with a single point per distinct timestamp inside r. The dashboard's main
// chart uses the median; mean is kept for comparison.
func (h *Handle) AggregatedWaterLevelSeries(r DateRange, method AggregationMethod) (WaterLevelSeries, error) {
	if err := r.Validate(); err != nil {
		return WaterLevelSeries{}, err
	}
	if method != MethodMedian && method != MethodMean {
		return WaterLevelSeries{}, fmt.Errorf("%w: unknown aggregation method %q", ErrInvalidParameter, method)
	}

	buckets := make(map[int64][]float64)
	instants := make(map[int64]time.Time)
	for _, id := range h.waterIDs {
		for _, reading := range waterInRange(h.water[id], r) {
			key := reading.Timestamp.UnixNano()
			buckets[key] = append(buckets[key], reading.Height)
			instants[key] = reading.Timestamp
		}
	}

	keys := make([]int64, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	series := WaterLevelSeries{Points: make([]WaterLevelPoint, 0, len(keys))}
	heights := make([]float64, 0, len(keys))
	for _, key := range keys {
		var v float64
		if method == MethodMedian {
			v = median(buckets[key])
		} else {
			v = mean(buckets[key])
		}
		series.Points = append(series.Points, WaterLevelPoint{Timestamp: instants[key], Height: v})
		heights = append(heights, v)
	}
	series.Accelerations = secondDifferences(heights)
	return series, nil
}

// Deltas returns the first differences between consecutive points, one fewer
// sample than the series has points.
func (s WaterLevelSeries) Deltas() []float64 {
	if len(s.Points) < 2 {
		return []float64{}
	}
	out := make([]float64, 0, len(s.Points)-1)
	for i := 1; i < len(s.Points); i++ {
		out = append(out, s.Points[i].Height-s.Points[i-1].Height)
	}
	return out
}

// NormalizedAccelerations scales the acceleration samples by the largest
// magnitude into [-1, 1]. All zeros stay all zeros.
func (s WaterLevelSeries) NormalizedAccelerations() []float64 {
	out := make([]float64, len(s.Accelerations))
	maxAbs := 0.0
	for _, a := range s.Accelerations {
		if math.Abs(a) > maxAbs {
			maxAbs = math.Abs(a)
		}
	}
	if maxAbs == 0 {
		return out
	}
	for i, a := range s.Accelerations {
		out[i] = a / maxAbs
	}
	return out
}

// secondDifferences derives acceleration samples from consecutive heights:
// out[i] = (h[i+2]-h[i+1]) - (h[i+1]-h[i]).
func secondDifferences(heights []float64) []float64 {
	if len(heights) < 3 {
		return []float64{}
	}
	out := make([]float64, 0, len(heights)-2)
	for i := 0; i+2 < len(heights); i++ {
		out = append(out, (heights[i+2]-heights[i+1])-(heights[i+1]-heights[i]))
	}
	return out
}

// median returns the middle value, or the mean of the two middles for even
// counts. The input is copied before sorting.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
