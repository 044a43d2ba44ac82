package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Type is a bookable appointment category (consultation, follow-up, lab
// results, ...). Its DurationMins is the default when a booking does not name
// its own duration.
type Type struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Name         string `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
	Description  string `gorm:"column:description;type:text"`
	DurationMins int    `gorm:"column:duration_mins;not null;default:30"`
	ColorCode    string `gorm:"column:color_code;type:varchar(7);default:'#007bff'"`
	IsActive     bool   `gorm:"column:is_active;default:true"`
}

func (Type) TableName() string {
	return "clinical.appointment_types"
}
