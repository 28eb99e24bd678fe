package incident

import (
	"time"

	"github.com/google/uuid"

	"github.com/viverecare/vivere/internal/domain/observation"
)

// Severity grades an incident. Stored values follow the clinical record
// vocabulary used across the product.
type Severity string

const (
	SeverityLow      Severity = "LEVE"
	SeverityModerate Severity = "MODERADA"
	SeveritySevere   Severity = "GRAVE"
)

var validSeverities = map[Severity]bool{
	SeverityLow:      true,
	SeverityModerate: true,
	SeveritySevere:   true,
}

func ValidSeverity(s Severity) bool { return validSeverities[s] }

// Category splits incidents into clinical and care-assistance domains.
type Category string

const (
	CategoryClinical     Category = "CLINICA"
	CategoryAssistential Category = "ASSISTENCIAL"
)

// Subtype identifies the concrete incident kind within a category.
type Subtype string

const (
	SubtypeFallWithInjury Subtype = "QUEDA_COM_LESAO"
	SubtypeSuicideAttempt Subtype = "TENTATIVA_SUICIDIO"
	SubtypeAcuteDiarrhea  Subtype = "DOENCA_DIARREICA_AGUDA"
	SubtypeDehydration    Subtype = "DESIDRATACAO"
	SubtypeMalnutrition   Subtype = "DESNUTRICAO"
	SubtypeVomiting       Subtype = "VOMITO"
	SubtypePressureUlcer  Subtype = "ULCERA_DECUBITO"
	SubtypeOtherClinical  Subtype = "OUTRA_CLINICA"
	SubtypeFoodRefusal    Subtype = "RECUSA_ALIMENTACAO"
	SubtypeAgitation      Subtype = "AGITACAO_PSICOMOTORA"
	SubtypeAggressiveness Subtype = "AGRESSIVIDADE"
)

// Regulatory indicator codes reported to the health-surveillance authority.
const (
	IndicatorAcuteDiarrhea = "DIARREIA_AGUDA"
	IndicatorDehydration   = "DESIDRATACAO"
	IndicatorMalnutrition  = "DESNUTRICAO"
	IndicatorPressureUlcer = "ULCERA_DECUBITO"
)

// sentinelSet lists the (category, subtype) pairs subject to the mandatory
// 24-hour health-surveillance notification (RDC 502/2021 Art. 55).
var sentinelSet = map[Category]map[Subtype]bool{
	CategoryClinical: {
		SubtypeFallWithInjury: true,
		SubtypeSuicideAttempt: true,
	},
}

// IsSentinel reports whether an incident of the given kind requires the
// sentinel-event regulatory workflow.
func IsSentinel(category Category, subtype Subtype) bool {
	return sentinelSet[category][subtype]
}

// Disposition tells the pipeline what to do with a candidate.
type Disposition string

const (
	DispositionAlert    Disposition = "ALERT"
	DispositionIncident Disposition = "INCIDENT"
)

// DedupPolicy selects how the deduplicator decides two incidents are
// equivalent.
type DedupPolicy string

const (
	// DedupWindow: an incident of the same resident/category/subtype whose
	// reconstructed instant falls within the candidate's trailing window.
	DedupWindow DedupPolicy = "window"
	// DedupCalendarDay: an incident of the same kind on the same civil date.
	DedupCalendarDay DedupPolicy = "calendar_day"
	// DedupSourceRecord: an incident already references the same source
	// observation.
	DedupSourceRecord DedupPolicy = "source"
)

// Candidate is the ephemeral output of a rule evaluation. Candidates with
// DispositionAlert become notifications; candidates with DispositionIncident
// pass through deduplication and, if new, are persisted as incidents.
type Candidate struct {
	RuleID      string
	Severity    Severity
	Category    Category
	Subtype     Subtype
	Description string
	Action      string
	Disposition Disposition
	Indicators  []string
	Dedup       DedupPolicy
	Window      time.Duration

	// Source is the observation that triggered the rule; Instant is its
	// reconstructed absolute time in the tenant's timezone.
	Source  *observation.Observation
	Instant time.Time
}

// Incident is a persisted clinical or assistential occurrence.
type Incident struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	ResidentID          uuid.UUID  `json:"resident_id" db:"resident_id"`
	Category            Category   `json:"category" db:"category"`
	Subtype             Subtype    `json:"subtype" db:"subtype"`
	Severity            Severity   `json:"severity" db:"severity"`
	Date                string     `json:"date" db:"civil_date"`
	Time                *string    `json:"time,omitempty" db:"civil_time"`
	Description         string     `json:"description" db:"description"`
	ActionTaken         string     `json:"action_taken" db:"action_taken"`
	IsSentinelEvent     bool       `json:"is_sentinel_event" db:"is_sentinel_event"`
	Indicators          []string   `json:"indicators" db:"indicators"`
	SourceObservationID *uuid.UUID `json:"source_observation_id,omitempty" db:"source_observation_id"`
	AutoDetected        bool       `json:"auto_detected" db:"auto_detected"`
	AuthorID            uuid.UUID  `json:"author_id" db:"author_id"`
	RecordedBy          string     `json:"recorded_by" db:"recorded_by"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	DeletedAt           *time.Time `json:"-" db:"deleted_at"`
}
