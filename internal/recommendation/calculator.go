package recommendation

import (
	"github.com/i474232898/plant-care/internal/common"
	"github.com/i474232898/plant-care/internal/environment"
	"github.com/i474232898/plant-care/internal/plants"
)

// Rationale messages, one per rule outcome.
const (
	RationaleHighSunlight  = "increase watering — high sunlight"
	RationaleLowSunlight   = "decrease watering — low sunlight"
	RationaleMaintain      = "maintain usual watering schedule"
	RationaleLowHumidity   = "increase watering — low humidity"
	RationaleHighHumidity  = "reduce watering — high humidity will slow evaporation"
	RationaleRainfallAhead = "reduce watering — rainfall expected"
)

const (
	uvTolerance            = 1.0
	humidityTolerance      = 15.0
	precipitationTolerance = 20.0

	highUVFactor        = 1.20
	lowUVFactor         = 0.90
	lowHumidityFactor   = 1.15
	highHumidityFactor  = 0.85
	rainfallAheadFactor = 0.80
)

// Result is the calculator's output.
type Result struct {
	WaterMl   int    `json:"waterMl"`
	Rationale string `json:"rationale"`
}

// Compute applies the UV, humidity and precipitation rules in that order. Factors
// compound and the rationale of the last rule that fired wins. A rule whose ideal is
// unset never fires. The result is not clamped.
func Compute(ideals plants.Conditions, reading environment.Reading) Result {
	baseline := plants.DefaultWaterMlPerDay
	if ideals.IdealWaterMlPerDay != nil {
		baseline = *ideals.IdealWaterMlPerDay
	}

	rationale := RationaleMaintain
	if ideals.IdealUV != nil {
		switch {
		case reading.UVIndex > *ideals.IdealUV+uvTolerance:
			baseline *= highUVFactor
			rationale = RationaleHighSunlight
		case reading.UVIndex < *ideals.IdealUV-uvTolerance:
			baseline *= lowUVFactor
			rationale = RationaleLowSunlight
		}
	}

	if ideals.IdealHumidityPercent != nil {
		switch {
		case reading.HumidityPercent < *ideals.IdealHumidityPercent-humidityTolerance:
			baseline *= lowHumidityFactor
			rationale = RationaleLowHumidity
		case reading.HumidityPercent > *ideals.IdealHumidityPercent+humidityTolerance:
			baseline *= highHumidityFactor
			rationale = RationaleHighHumidity
		}
	}

	if ideals.IdealPrecipitationPercent != nil &&
		reading.PrecipitationPercent > *ideals.IdealPrecipitationPercent+precipitationTolerance {
		baseline *= rainfallAheadFactor
		rationale = RationaleRainfallAhead
	}

	return Result{
		WaterMl:   common.RoundInt(baseline),
		Rationale: rationale,
	}
}
