package frame

import (
	"math"

	"github.com/cschone/bikefit/pkg/errors"
)

// BicycleSpec defines a bicycle frame by its dimensional characteristics.
// All lengths are millimeters, all angles degrees from horizontal. A spec is
// constructed once from validated input and never mutated.
type BicycleSpec struct {
	Name      string `json:"name" bson:"name" toml:"name"`
	FrameSize string `json:"size" bson:"size" toml:"size"`
	Color     string `json:"color_str,omitempty" bson:"color,omitempty" toml:"color"` // display hint, may be empty

	BBDrop          float64 `json:"bb_drop" bson:"bb_drop" toml:"bb_drop"`
	BBDiameter      float64 `json:"bb_diameter" bson:"bb_diameter" toml:"bb_diameter"`
	ChainstayLength float64 `json:"chainstay_length" bson:"chainstay_length" toml:"chainstay_length"`
	ForkLength      float64 `json:"fork_length" bson:"fork_length" toml:"fork_length"`
	ForkOffset      float64 `json:"fork_offset" bson:"fork_offset" toml:"fork_offset"`
	HeadTubeAngle   float64 `json:"head_tube_angle" bson:"head_tube_angle" toml:"head_tube_angle"`
	HeadTubeLength  float64 `json:"head_tube_length" bson:"head_tube_length" toml:"head_tube_length"`
	SeatTubeAngle   float64 `json:"seat_tube_angle" bson:"seat_tube_angle" toml:"seat_tube_angle"`
	SeatTubeLength  float64 `json:"seat_tube_length" bson:"seat_tube_length" toml:"seat_tube_length"`
	Wheelbase       float64 `json:"wheelbase" bson:"wheelbase" toml:"wheelbase"`
	WheelDiameter   float64 `json:"wheel_diameter" bson:"wheel_diameter" toml:"wheel_diameter"`

	// Stem dimensions are optional: a zero StemLength means the layout is
	// computed without a stem segment.
	StemAngle  float64 `json:"stem_angle,omitempty" bson:"stem_angle,omitempty" toml:"stem_angle"`
	StemLength float64 `json:"stem_length,omitempty" bson:"stem_length,omitempty" toml:"stem_length"`
}

// RiderSpec defines the rider contact-point dimensions, millimeters.
// Supplying one adds a saddle segment to the computed layout.
type RiderSpec struct {
	SaddleHeight  float64 `json:"saddle_height" bson:"saddle_height" toml:"saddle_height"`
	SaddleLength  float64 `json:"saddle_length" bson:"saddle_length" toml:"saddle_length"`
	SaddleSetBack float64 `json:"saddle_set_back" bson:"saddle_set_back" toml:"saddle_set_back"`
}

// requiredLengths maps field names to their values for validation.
// Stem fields are absent: they are optional.
func (s *BicycleSpec) requiredLengths() map[string]float64 {
	return map[string]float64{
		"bb_drop":          s.BBDrop,
		"bb_diameter":      s.BBDiameter,
		"chainstay_length": s.ChainstayLength,
		"fork_length":      s.ForkLength,
		"fork_offset":      s.ForkOffset,
		"head_tube_length": s.HeadTubeLength,
		"seat_tube_length": s.SeatTubeLength,
		"wheelbase":        s.Wheelbase,
		"wheel_diameter":   s.WheelDiameter,
	}
}

// Validate checks that the spec describes a geometrically computable frame.
//
// Field-level failures (non-finite or non-positive dimensions) return
// INVALID_SPEC errors. Combinations that make the derivation chain itself
// impossible (chainstay shorter than the bottom-bracket drop, a head tube
// angle whose axis never crosses the hub line) return INVALID_GEOMETRY, the
// same errors Compute surfaces, so callers can reject bad input before
// computing anything.
func (s *BicycleSpec) Validate() error {
	for field, v := range s.requiredLengths() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidSpec, "%s must be finite", field)
		}
		if v <= 0 {
			return errors.New(errors.ErrCodeInvalidSpec, "%s must be positive, got %g", field, v)
		}
	}
	for field, v := range map[string]float64{
		"head_tube_angle": s.HeadTubeAngle,
		"seat_tube_angle": s.SeatTubeAngle,
		"stem_angle":      s.StemAngle,
		"stem_length":     s.StemLength,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidSpec, "%s must be finite", field)
		}
	}
	if s.StemLength < 0 {
		return errors.New(errors.ErrCodeInvalidSpec, "stem_length must not be negative, got %g", s.StemLength)
	}

	if s.ChainstayLength < s.BBDrop {
		return errors.New(errors.ErrCodeInvalidGeometry,
			"chainstay too short for bottom-bracket drop (%g < %g)", s.ChainstayLength, s.BBDrop)
	}
	if singularHeadAngle(s.HeadTubeAngle) {
		return errors.New(errors.ErrCodeInvalidGeometry,
			"head_tube_angle %g is parallel to the hub line", s.HeadTubeAngle)
	}
	return nil
}

// Validate checks the rider dimensions.
func (r *RiderSpec) Validate() error {
	for field, v := range map[string]float64{
		"saddle_height":   r.SaddleHeight,
		"saddle_length":   r.SaddleLength,
		"saddle_set_back": r.SaddleSetBack,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidSpec, "%s must be finite", field)
		}
	}
	if r.SaddleHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidSpec, "saddle_height must be positive, got %g", r.SaddleHeight)
	}
	if r.SaddleLength <= 0 {
		return errors.New(errors.ErrCodeInvalidSpec, "saddle_length must be positive, got %g", r.SaddleLength)
	}
	return nil
}

// singularHeadAngle reports whether the head tube axis runs parallel to the
// hub line, which makes the fork-offset projection divide by zero.
func singularHeadAngle(angleDeg float64) bool {
	return math.Abs(math.Cos(radians(90-angleDeg))) < 1e-12
}

// DefaultSpec returns the documented example bike, a traditional Large road
// frame. Loaders fall back to it when an input file cannot be read, so a
// comparison run never aborts entirely on one bad file.
func DefaultSpec() BicycleSpec {
	return BicycleSpec{
		Name:            "Example",
		FrameSize:       "Large",
		BBDrop:          75,
		BBDiameter:      34.8,
		ChainstayLength: 450,
		ForkLength:      405,
		ForkOffset:      50,
		HeadTubeAngle:   71.5,
		HeadTubeLength:  205,
		SeatTubeAngle:   72.5,
		SeatTubeLength:  560,
		Wheelbase:       1072.6,
		WheelDiameter:   700,
	}
}
