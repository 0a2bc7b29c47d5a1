package engine

import (
	"math"
	"sort"
)

// StationRainfallSummary aggregates one station's precipitation inside a
// range. Variation is the max-min spread; StdDev is the sample standard
// deviation the map hover shows, 0 when the station has a single reading.
type StationRainfallSummary struct {
	StationID          string  `json:"station_id"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	TotalPrecipitation float64 `json:"total_precipitation_mm"`
	Variation          float64 `json:"variation_mm"`
	StdDev             float64 `json:"std_dev_mm"`
	ReadingCount       int     `json:"reading_count"`
}

// RainfallSummaries aggregates every station with at least one reading in r,
// sorted by station id. Stations with no readings in the window are omitted.
func (h *Handle) RainfallSummaries(r DateRange) ([]StationRainfallSummary, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	summaries := make([]StationRainfallSummary, 0, len(h.rainIDs))
	for _, id := range h.rainIDs {
		window := rainInRange(h.rain[id], r)
		if len(window) == 0 {
			continue
		}

		summary := StationRainfallSummary{
			StationID:    id,
			Latitude:     window[0].Latitude,
			Longitude:    window[0].Longitude,
			ReadingCount: len(window),
		}
		low, high := window[0].Precipitation, window[0].Precipitation
		for _, reading := range window {
			summary.TotalPrecipitation += reading.Precipitation
			if reading.Precipitation < low {
				low = reading.Precipitation
			}
			if reading.Precipitation > high {
				high = reading.Precipitation
			}
		}
		summary.Variation = high - low
		summary.StdDev = sampleStdDev(window)
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// TopN returns the n summaries with the highest totals; equal totals rank by
// station id ascending. n beyond the input length returns everything, n <= 0
// returns an empty slice. The input is never reordered.
func TopN(summaries []StationRainfallSummary, n int) []StationRainfallSummary {
	ranked := make([]StationRainfallSummary, len(summaries))
	copy(ranked, summaries)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalPrecipitation != ranked[j].TotalPrecipitation {
			return ranked[i].TotalPrecipitation > ranked[j].TotalPrecipitation
		}
		return ranked[i].StationID < ranked[j].StationID
	})
	if n <= 0 {
		return []StationRainfallSummary{}
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// VariationIndex scales each summary's variation by the slice maximum into
// [0, 1], the map color scale. All zeros when no variation is positive.
func VariationIndex(summaries []StationRainfallSummary) []float64 {
	out := make([]float64, len(summaries))
	maxVar := 0.0
	for _, s := range summaries {
		if s.Variation > maxVar {
			maxVar = s.Variation
		}
	}
	if maxVar == 0 {
		return out
	}
	for i, s := range summaries {
		out[i] = s.Variation / maxVar
	}
	return out
}

// sampleStdDev is the n-1 standard deviation of the window's precipitation.
func sampleStdDev(window []RainfallReading) float64 {
	if len(window) < 2 {
		return 0
	}
	m := 0.0
	for _, r := range window {
		m += r.Precipitation
	}
	m /= float64(len(window))
	var ss float64
	for _, r := range window {
		d := r.Precipitation - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(window)-1))
}
