package plants

import (
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/plant-care/internal/common"
)

// SoilType is one of the fixed soil categories a plant can be potted in.
type SoilType string

const (
	SoilLoamy    SoilType = "Loamy Soil"
	SoilSandy    SoilType = "Sandy Soil"
	SoilClay     SoilType = "Clay Soil"
	SoilSilty    SoilType = "Silty Soil"
	SoilPeaty    SoilType = "Peaty Soil"
	SoilChalky   SoilType = "Chalky Soil"
	SoilSaline   SoilType = "Saline Soil"
	SoilLaterite SoilType = "Laterite Soil"
	SoilBlack    SoilType = "Black Soil"
	SoilRed      SoilType = "Red Soil"
	SoilAlluvial SoilType = "Alluvial Soil"
)

// SoilTypes lists every accepted soil category in display order.
var SoilTypes = []SoilType{
	SoilLoamy, SoilSandy, SoilClay, SoilSilty, SoilPeaty, SoilChalky,
	SoilSaline, SoilLaterite, SoilBlack, SoilRed, SoilAlluvial,
}

// Valid reports whether s is one of SoilTypes.
func (s SoilType) Valid() bool {
	for _, t := range SoilTypes {
		if t == s {
			return true
		}
	}
	return false
}

// DefaultWaterMlPerDay is the baseline used when a species has no daily water target.
const DefaultWaterMlPerDay = 300.0

// RecommendationTypeWater is the only recommendation type generated today.
const RecommendationTypeWater = "water"

// Conditions holds the ideal growing conditions of a species. Every ideal is optional.
type Conditions struct {
	ID                        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name                      string    `gorm:"uniqueIndex;not null" json:"name"`
	IdealUV                   *float64  `json:"idealUv"`
	IdealHumidityPercent      *float64  `json:"idealHumidityPercent"`
	IdealPrecipitationPercent *float64  `json:"idealPrecipitationPercent"`
	IdealSunlightHours        *float64  `json:"idealSunlightHours"`
	IdealWaterMlPerDay        *float64  `json:"idealWaterMlPerDay"`
}

func (Conditions) TableName() string { return "plant_conditions" }

// Plant is a user's planted instance of a species.
type Plant struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	ConditionsID uuid.UUID  `gorm:"type:uuid;not null" json:"conditionsId"`
	Conditions   Conditions `gorm:"foreignKey:ConditionsID" json:"conditions"`
	SoilType     SoilType   `gorm:"type:varchar(32)" json:"soilType"`
	Nickname     string     `json:"nickname"`
	DatePlanted  time.Time  `gorm:"type:date" json:"datePlanted"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// WateringLog records one watering action. Append-only.
type WateringLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlantID      uuid.UUID `gorm:"type:uuid;not null;index:idx_watering_logs_plant_date,priority:1" json:"plantId"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	LogDate      time.Time `gorm:"type:date;not null;index:idx_watering_logs_plant_date,priority:2" json:"logDate"`
	WaterGivenMl float64   `json:"waterGivenMl"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Timestamp coerces the calendar LogDate to an instant in loc. A log created on its
// own day resolves to its creation time; a back-dated log resolves to that day's midnight.
func (l WateringLog) Timestamp(loc *time.Location) time.Time {
	y, m, d := l.LogDate.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if !l.CreatedAt.IsZero() && common.SameDay(l.CreatedAt, dayStart, loc) {
		return l.CreatedAt.In(loc)
	}
	return dayStart
}

// Recommendation is a generated watering suggestion. Append-only.
type Recommendation struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlantID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recommendations_generation,priority:1" json:"plantId"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Type               string    `gorm:"type:varchar(16);not null" json:"recommendationType"`
	Text               string    `json:"recommendationText"`
	RecommendedWaterMl int       `json:"recommendedWaterMl"`
	DateGenerated      time.Time `gorm:"not null;index" json:"dateGenerated"`

	// GenerationKey identifies the state a recommendation was derived from
	// (calendar day + latest watering log); unique per plant.
	GenerationKey string `gorm:"type:varchar(80);not null;uniqueIndex:idx_recommendations_generation,priority:2" json:"-"`
}

// Profile carries the user's location preferences.
type Profile struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"userId"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasLocation reports whether the profile names a place to query conditions for.
func (p *Profile) HasLocation() bool {
	if p == nil {
		return false
	}
	if p.City != "" && p.State != "" {
		return true
	}
	return p.Latitude != nil && p.Longitude != nil
}
