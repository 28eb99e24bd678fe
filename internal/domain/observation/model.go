package observation

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies a care observation by the routine it came from.
type Category string

const (
	CategoryElimination Category = "elimination"
	CategoryFeeding     Category = "feeding"
	CategoryBehavior    Category = "behavior"
	CategoryHygiene     Category = "hygiene"
	CategoryVitals      Category = "vitals"
	CategoryMedication  Category = "medication"
	CategorySleep       Category = "sleep"
)

var validCategories = map[Category]bool{
	CategoryElimination: true, CategoryFeeding: true, CategoryBehavior: true,
	CategoryHygiene: true, CategoryVitals: true, CategoryMedication: true,
	CategorySleep: true,
}

// ValidCategory reports whether c is a known observation category.
func ValidCategory(c Category) bool { return validCategories[c] }

// Observation maps to the observation table. It is the immutable record of a
// single care event: the civil date and wall-clock time are stored exactly as
// the caregiver recorded them, and the category-specific details live in the
// JSONB payload. Rows are never updated by this module once written.
type Observation struct {
	ID         uuid.UUID              `db:"id" json:"id"`
	ResidentID uuid.UUID              `db:"resident_id" json:"resident_id"`
	Category   Category               `db:"category" json:"category"`
	Date       string                 `db:"civil_date" json:"date"`
	Time       *string                `db:"civil_time" json:"time,omitempty"`
	Payload    map[string]interface{} `db:"payload" json:"payload"`
	AuthorID   uuid.UUID              `db:"author_id" json:"author_id"`
	RecordedBy string                 `db:"recorded_by" json:"recorded_by"`
	CreatedAt  time.Time              `db:"created_at" json:"created_at"`
	DeletedAt  *time.Time             `db:"deleted_at" json:"deleted_at,omitempty"`
}

// TimeOfDay returns the civil time of day, or "" when none was recorded.
func (o *Observation) TimeOfDay() string {
	if o.Time == nil {
		return ""
	}
	return *o.Time
}

// PayloadString returns the payload value at key when it is a string.
// Missing or differently typed values come back as "": rules treat a payload
// that does not have the shape they expect as "does not match".
func (o *Observation) PayloadString(key string) string {
	if o.Payload == nil {
		return ""
	}
	s, _ := o.Payload[key].(string)
	return s
}
