package environment

import (
	"math"
	"sort"
	"time"
)

const (
	// SummaryWindow is how far ahead forecast entries are averaged.
	SummaryWindow = 24 * time.Hour

	// fallbackEntries is used when no entry falls inside the window (about 12h of 3-hourly data).
	fallbackEntries = 4
)

// SummarizeForecast averages the entries whose timestamps fall in [now, now+SummaryWindow).
// When none do, the first few entries are used instead. ok is false only for an empty input.
func SummarizeForecast(entries []ForecastEntry, now time.Time) (summary DailySummary, ok bool) {
	if len(entries) == 0 {
		return DailySummary{}, false
	}

	sorted := make([]ForecastEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	end := now.Add(SummaryWindow)
	window := make([]ForecastEntry, 0, len(sorted))
	for _, e := range sorted {
		if !e.Timestamp.Before(now) && e.Timestamp.Before(end) {
			window = append(window, e)
		}
	}
	if len(window) == 0 {
		n := fallbackEntries
		if n > len(sorted) {
			n = len(sorted)
		}
		window = sorted[:n]
	}

	var (
		sumTemp     float64
		sumHumidity float64
		sumPop      float64
		sumRain     float64
	)
	for _, e := range window {
		sumTemp += e.TemperatureC
		sumHumidity += e.HumidityPct
		sumPop += e.PrecipProbability
		sumRain += e.RainMm
	}

	n := float64(len(window))
	return DailySummary{
		TemperatureC:         roundTo(sumTemp/n, 1),
		HumidityPercent:      math.Round(sumHumidity / n),
		PrecipitationPercent: math.Round(sumPop / n * 100),
		RainMm:               roundTo(sumRain/n, 1),
		Entries:              len(window),
	}, true
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
