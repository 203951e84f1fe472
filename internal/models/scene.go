package models

import "time"

// IntExt flags whether a scene shoots on a stage/interior or outdoors.
const (
	Interior = "INT"
	Exterior = "EXT"
)

// Time-of-day categories carried on the script breakdown.
const (
	TimeDay      = "DAY"
	TimeNight    = "NIGHT"
	TimeDawn     = "DAWN"
	TimeDusk     = "DUSK"
	TimeContinue = "CONTINUOUS"
)

// ShotComplexity is an enumerated shot weighting. It replaces the loose
// shot-type → factor mapping so an unknown complexity is a type error, not
// a silent default.
type ShotComplexity int

const (
	ComplexitySimple ShotComplexity = iota
	ComplexityStandard
	ComplexityComplex
	ComplexityStunt
)

// Weight returns the setup-cost multiplier for the complexity tier.
func (c ShotComplexity) Weight() float64 {
	switch c {
	case ComplexitySimple:
		return 0.8
	case ComplexityComplex:
		return 1.3
	case ComplexityStunt:
		return 1.6
	default:
		return 1.0
	}
}

// ParseShotComplexity maps a stored label onto the enum, defaulting to
// standard for legacy rows.
func ParseShotComplexity(raw string) ShotComplexity {
	switch raw {
	case "simple":
		return ComplexitySimple
	case "complex":
		return ComplexityComplex
	case "stunt":
		return ComplexityStunt
	default:
		return ComplexityStandard
	}
}

func (c ShotComplexity) String() string {
	switch c {
	case ComplexitySimple:
		return "simple"
	case ComplexityComplex:
		return "complex"
	case ComplexityStunt:
		return "stunt"
	default:
		return "standard"
	}
}

// Scene is a discrete script unit with a page count, location and cast
// requirement. Immutable for the duration of one optimization run.
type Scene struct {
	ID             string    `db:"id" json:"id"`
	ProductionID   string    `db:"production_id" json:"productionId"`
	SceneNumber    string    `db:"scene_number" json:"sceneNumber"`
	IntExt         string    `db:"int_ext" json:"intExt"`
	TimeOfDay      string    `db:"time_of_day" json:"timeOfDay"`
	LocationID     string    `db:"location_id" json:"locationId"`
	EstimatedPages float64   `db:"estimated_pages" json:"estimatedPages"`
	ShotCount      *int      `db:"shot_count" json:"shotCount,omitempty"`
	Complexity     string    `db:"complexity" json:"complexity"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`

	// CastIDs is loaded from the scene_cast join table, not a column.
	CastIDs []string `db:"-" json:"castIds"`
}

// IsExterior reports whether the scene shoots outdoors.
func (s Scene) IsExterior() bool {
	return s.IntExt == Exterior
}

// IsNight reports whether the scene needs night or dusk lighting setups.
func (s Scene) IsNight() bool {
	return s.TimeOfDay == TimeNight || s.TimeOfDay == TimeDusk
}
