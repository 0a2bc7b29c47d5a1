package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return baseTime.AddDate(0, 0, n)
}

func waterReading(station string, n int, height float64) WaterLevelReading {
	return WaterLevelReading{StationID: station, Timestamp: day(n), Height: height}
}

func rainReading(station string, n int, mm float64) RainfallReading {
	return RainfallReading{StationID: station, Timestamp: day(n), Latitude: 43.6, Longitude: 1.44, Precipitation: mm}
}

func TestLoad(t *testing.T) {
	water := []WaterLevelReading{waterReading("A", 0, 100)}
	rain := []RainfallReading{rainReading("R1", 0, 2)}

	t.Run("rejects empty water dataset", func(t *testing.T) {
		_, err := Load(nil, rain)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("rejects empty rainfall dataset", func(t *testing.T) {
		_, err := Load(water, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("groups readings by station sorted by timestamp", func(t *testing.T) {
		interleaved := []WaterLevelReading{
			waterReading("B", 2, 210),
			waterReading("A", 1, 110),
			waterReading("B", 0, 200),
			waterReading("A", 0, 100),
		}
		h, err := Load(interleaved, rain)
		require.NoError(t, err)

		series, err := h.WaterLevelSeries("B", h.FullDataRange())
		require.NoError(t, err)
		require.Len(t, series.Points, 2)
		assert.Equal(t, day(0), series.Points[0].Timestamp)
		assert.Equal(t, 200.0, series.Points[0].Height)
		assert.Equal(t, day(2), series.Points[1].Timestamp)
		assert.Equal(t, 210.0, series.Points[1].Height)

		assert.Equal(t, []string{"A", "B"}, h.WaterStations())
	})

	t.Run("equal timestamps keep input order", func(t *testing.T) {
		dup := []WaterLevelReading{
			waterReading("A", 1, 1),
			waterReading("A", 0, 99),
			waterReading("A", 1, 2),
		}
		h, err := Load(dup, rain)
		require.NoError(t, err)

		series, err := h.WaterLevelSeries("A", h.FullDataRange())
		require.NoError(t, err)
		require.Len(t, series.Points, 3)
		assert.Equal(t, 99.0, series.Points[0].Height)
		assert.Equal(t, 1.0, series.Points[1].Height)
		assert.Equal(t, 2.0, series.Points[2].Height)
	})

	t.Run("full data range spans both datasets", func(t *testing.T) {
		h, err := Load(
			[]WaterLevelReading{waterReading("A", 2, 100), waterReading("A", 5, 110)},
			[]RainfallReading{rainReading("R1", 0, 1), rainReading("R1", 9, 3)},
		)
		require.NoError(t, err)
		assert.Equal(t, DateRange{Start: day(0), End: day(9)}, h.FullDataRange())
	})

	t.Run("size reports loaded counts", func(t *testing.T) {
		h, err := Load(
			[]WaterLevelReading{waterReading("A", 0, 1), waterReading("A", 1, 2), waterReading("B", 0, 3)},
			[]RainfallReading{rainReading("R1", 0, 1), rainReading("R2", 0, 2)},
		)
		require.NoError(t, err)
		nWater, nRain := h.Size()
		assert.Equal(t, 3, nWater)
		assert.Equal(t, 2, nRain)
	})

	t.Run("handle ignores later mutation of the input slices", func(t *testing.T) {
		input := []WaterLevelReading{waterReading("A", 0, 100), waterReading("A", 1, 110)}
		h, err := Load(input, rain)
		require.NoError(t, err)

		input[0].Height = -1
		series, err := h.WaterLevelSeries("A", h.FullDataRange())
		require.NoError(t, err)
		assert.Equal(t, 100.0, series.Points[0].Height)
	})
}

func TestConcurrentQueries(t *testing.T) {
	h, err := Load(
		[]WaterLevelReading{
			waterReading("A", 0, 10),
			waterReading("A", 1, 12),
			waterReading("A", 2, 11),
			waterReading("A", 3, 15),
			waterReading("B", 0, 100),
		},
		[]RainfallReading{
			rainReading("R1", 0, 1),
			rainReading("R1", 1, 3),
			rainReading("R2", 2, 2),
		},
	)
	require.NoError(t, err)

	want, err := h.WaterLevelSeries("A", h.FullDataRange())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			series, err := h.WaterLevelSeries("A", h.FullDataRange())
			assert.NoError(t, err)
			assert.Equal(t, want, series)
		}()
		go func() {
			defer wg.Done()
			summaries, err := h.RainfallSummaries(h.FullDataRange())
			assert.NoError(t, err)
			assert.Len(t, summaries, 2)
		}()
		go func() {
			defer wg.Done()
			_, err := h.AggregatedWaterLevelSeries(h.FullDataRange(), MethodMedian)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestDateRange(t *testing.T) {
	r := DateRange{Start: day(1), End: day(3)}

	t.Run("contains is inclusive on both ends", func(t *testing.T) {
		assert.True(t, r.Contains(day(1)))
		assert.True(t, r.Contains(day(2)))
		assert.True(t, r.Contains(day(3)))
		assert.False(t, r.Contains(day(0)))
		assert.False(t, r.Contains(day(4)))
	})

	t.Run("validate rejects start after end", func(t *testing.T) {
		err := DateRange{Start: day(3), End: day(1)}.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("single instant range is valid", func(t *testing.T) {
		assert.NoError(t, DateRange{Start: day(1), End: day(1)}.Validate())
	})
}

func TestStationListings(t *testing.T) {
	water := []WaterLevelReading{
		waterReading("O2000040", 0, 1500),
		waterReading("O1900010", 0, 1800),
	}
	rain := []RainfallReading{
		{StationID: "31069001", Timestamp: day(0), Latitude: 43.621, Longitude: 1.378, Precipitation: 4},
		{StationID: "31069001", Timestamp: day(1), Latitude: 43.621, Longitude: 1.378, Precipitation: 0},
		{StationID: "09289001", Timestamp: day(0), Latitude: 42.817, Longitude: 1.522, Precipitation: 12},
	}

	h, err := Load(water, rain)
	require.NoError(t, err)

	t.Run("water stations sorted", func(t *testing.T) {
		assert.Equal(t, []string{"O1900010", "O2000040"}, h.WaterStations())
	})

	t.Run("rainfall stations carry coordinates and counts", func(t *testing.T) {
		stations := h.RainfallStations()
		require.Len(t, stations, 2)
		assert.Equal(t, RainfallStation{StationID: "09289001", Latitude: 42.817, Longitude: 1.522, ReadingCount: 1}, stations[0])
		assert.Equal(t, RainfallStation{StationID: "31069001", Latitude: 43.621, Longitude: 1.378, ReadingCount: 2}, stations[1])
	})
}
