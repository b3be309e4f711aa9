package recommendation

import (
	"time"

	"github.com/i474232898/plant-care/internal/common"
)

// ShouldGenerate decides whether a new recommendation is due. The first matching rule wins:
// no previous recommendation; a watering logged after it; it predates today (in now's
// location). Otherwise the existing recommendation stands.
func ShouldGenerate(lastRecommendation, lastWatering *time.Time, now time.Time) bool {
	if lastRecommendation == nil {
		return true
	}
	if lastWatering != nil && lastWatering.After(*lastRecommendation) {
		return true
	}
	return lastRecommendation.Before(common.StartOfDay(now))
}
