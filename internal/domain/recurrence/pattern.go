package recurrence

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Pattern describes how a recurring series repeats. EndDate and
// MaxOccurrences bound generation; even when both are nil the generator
// enforces its own hard cap.
type Pattern struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name      string    `gorm:"column:name;type:varchar(100);not null"`
	Frequency Frequency `gorm:"column:frequency;type:varchar(20);not null"`
	// Repeat every Interval units of Frequency. Must be >= 1.
	Interval int `gorm:"column:interval;not null;default:1"`

	EndDate        *time.Time `gorm:"column:end_date"`
	MaxOccurrences *int       `gorm:"column:max_occurrences"`

	IsActive bool `gorm:"column:is_active;default:true"`
}

func (Pattern) TableName() string {
	return "clinical.recurring_patterns"
}

func (p *Pattern) Validate() error {
	if !p.Frequency.IsValid() {
		return ErrUnknownFrequency
	}
	if p.Interval < 1 {
		return ErrInvalidInterval
	}
	return nil
}
