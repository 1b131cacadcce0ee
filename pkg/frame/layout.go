// Package frame implements the bicycle frame geometry engine.
//
// Given a BicycleSpec (tube lengths, angles, offsets, wheel size) and an
// optional RiderSpec, Compute derives the 2D position of every structural
// element: wheels, bottom bracket, head tube, seat tube, chainstay, seat
// stay, fork, top and down tubes, and optionally stem and saddle. Each
// derivation is a pure function of spec fields and previously derived anchor
// points, so the chain forms an acyclic dependency graph over coordinates:
//
//  1. Rear hub (chainstay length and bottom-bracket drop, Pythagorean)
//  2. Bottom bracket (wheel radius and drop)
//  3. Front hub (rear hub plus wheelbase)
//  4. Head tube bottom and top (fork offset, fork length, head angle)
//  5. Seat tube top (seat tube length and angle from the bottom bracket)
//  6. Straight segments between derived points (chainstay, seat stay, fork,
//     top tube, down tube) and the optional stem and saddle
//  7. Scalar measurements (top and down tube lengths)
//
// The engine is side-effect free: it reads no files, keeps no state, and a
// Layout is recomputed in full whenever its inputs change. Geometrically
// impossible specs surface as INVALID_GEOMETRY errors, never as NaN or Inf
// coordinates in a Layout.
//
// Coordinates put the ground at y = 0 with the bottom bracket above the rear
// hub origin, so hub centers sit at y = wheel radius. The historical variant
// that anchored hubs at y = 0 is not supported; see the package tests for the
// invariants the chosen convention preserves.
package frame

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/cschone/bikefit/pkg/errors"
	"github.com/cschone/bikefit/pkg/geom"
)

// Steerer and handlebar constants used for the optional stem segment.
// The steerer extension models spacers between head tube top and stem clamp;
// the handlebar radius extends the stem vector to the bar center line.
const (
	steererExtension = 40.0
	handlebarRadius  = 15.9
)

// Wheel is a wheel placed in the frame plane.
type Wheel struct {
	Center   geom.Point `json:"center" bson:"center"`
	Diameter float64    `json:"diameter" bson:"diameter"`
}

// Layout is the computed 2D geometry of a bicycle frame, immutable once
// returned by Compute. Optional segments are nil pointers when the input that
// drives them was not supplied.
type Layout struct {
	Name      string `json:"name" bson:"name"`
	FrameSize string `json:"size" bson:"size"`
	Color     string `json:"color,omitempty" bson:"color,omitempty"`

	BottomBracket geom.Point `json:"bottom_bracket" bson:"bottom_bracket"`
	RearHub       geom.Point `json:"rear_hub" bson:"rear_hub"`
	FrontHub      geom.Point `json:"front_hub" bson:"front_hub"`

	HeadTube  geom.Segment `json:"head_tube" bson:"head_tube"`
	SeatTube  geom.Segment `json:"seat_tube" bson:"seat_tube"`
	Chainstay geom.Segment `json:"chainstay" bson:"chainstay"`
	SeatStay  geom.Segment `json:"seat_stay" bson:"seat_stay"`
	Fork      geom.Segment `json:"fork" bson:"fork"`
	TopTube   geom.Segment `json:"top_tube" bson:"top_tube"`
	DownTube  geom.Segment `json:"down_tube" bson:"down_tube"`

	Stem   *geom.Segment `json:"stem,omitempty" bson:"stem,omitempty"`
	Saddle *geom.Segment `json:"saddle,omitempty" bson:"saddle,omitempty"`

	RearWheel  Wheel   `json:"rear_wheel" bson:"rear_wheel"`
	FrontWheel Wheel   `json:"front_wheel" bson:"front_wheel"`
	BBDiameter float64 `json:"bb_diameter" bson:"bb_diameter"`

	// Scalar measurements, derived from the points above.
	TopTubeLength  float64 `json:"top_tube_length" bson:"top_tube_length"`
	DownTubeLength float64 `json:"down_tube_length" bson:"down_tube_length"`

	// Input dimensions carried through for comparison tables.
	Wheelbase       float64 `json:"wheelbase" bson:"wheelbase"`
	ChainstayLength float64 `json:"chainstay_length" bson:"chainstay_length"`
	HeadTubeAngle   float64 `json:"head_tube_angle" bson:"head_tube_angle"`
	SeatTubeAngle   float64 `json:"seat_tube_angle" bson:"seat_tube_angle"`
}

func radians(deg float64) float64 { return geom.Radians(deg) }

// Compute derives the full frame layout from a spec and an optional rider.
// It is the engine's sole entry point: pure, deterministic, and safe to call
// concurrently for independent specs.
//
// Compute returns an INVALID_SPEC or INVALID_GEOMETRY error for inputs that
// cannot describe a real frame; it never silently corrects them and never
// returns a layout containing NaN or Inf.
func Compute(spec BicycleSpec, rider *RiderSpec) (*Layout, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if rider != nil {
		if err := rider.Validate(); err != nil {
			return nil, err
		}
	}

	hubY := spec.WheelDiameter / 2

	// Step 1: rear hub. The chainstay is the hypotenuse of the right triangle
	// formed with the bottom-bracket drop.
	rearHub := geom.Point{
		X: -math.Sqrt(spec.ChainstayLength*spec.ChainstayLength - spec.BBDrop*spec.BBDrop),
		Y: hubY,
	}

	// Step 2: bottom bracket, the anchor for the seat tube and down tube.
	bb := geom.Point{X: 0, Y: hubY - spec.BBDrop}

	// Step 3: front hub.
	frontHub := geom.Point{X: rearHub.X + spec.Wheelbase, Y: hubY}

	// Step 4: head tube. Project the fork offset onto the hub line to find
	// where the steering axis crosses it, then walk up the axis.
	headBottom, headTop, err := headTubePoints(spec, frontHub)
	if err != nil {
		return nil, err
	}

	// Step 5: seat tube.
	seatTop := geom.VectorEndpoint(bb, spec.SeatTubeLength, spec.SeatTubeAngle)

	l := &Layout{
		Name:      spec.Name,
		FrameSize: spec.FrameSize,
		Color:     spec.Color,

		BottomBracket: bb,
		RearHub:       rearHub,
		FrontHub:      frontHub,

		HeadTube:  geom.Segment{A: headBottom, B: headTop},
		SeatTube:  geom.Segment{A: bb, B: seatTop},
		Chainstay: geom.Segment{A: bb, B: rearHub},
		SeatStay:  geom.Segment{A: seatTop, B: rearHub},
		Fork:      geom.Segment{A: frontHub, B: headBottom},
		TopTube:   geom.Segment{A: headTop, B: seatTop},
		DownTube:  geom.Segment{A: headBottom, B: bb},

		RearWheel:  Wheel{Center: rearHub, Diameter: spec.WheelDiameter},
		FrontWheel: Wheel{Center: frontHub, Diameter: spec.WheelDiameter},
		BBDiameter: spec.BBDiameter,

		Wheelbase:       spec.Wheelbase,
		ChainstayLength: spec.ChainstayLength,
		HeadTubeAngle:   spec.HeadTubeAngle,
		SeatTubeAngle:   spec.SeatTubeAngle,
	}

	// Step 6: optional stem and saddle.
	if spec.StemLength > 0 {
		stem := stemSegment(spec, headTop)
		l.Stem = &stem
	}
	if rider != nil {
		saddle := saddleSegment(spec, *rider, bb)
		l.Saddle = &saddle
	}

	// Step 7: scalar measurements.
	l.TopTubeLength = l.TopTube.Length()
	l.DownTubeLength = l.DownTube.Length()

	if err := l.checkFinite(); err != nil {
		return nil, err
	}
	return l, nil
}

// headTubePoints derives the bottom and top of the head tube from the front
// hub. The x-offset implied by the fork offset is singular when the head tube
// angle is parallel to the hub line.
func headTubePoints(spec BicycleSpec, frontHub geom.Point) (bottom, top geom.Point, err error) {
	cos := math.Cos(radians(90 - spec.HeadTubeAngle))
	if math.Abs(cos) < 1e-12 {
		return geom.Point{}, geom.Point{}, errors.New(errors.ErrCodeInvalidGeometry,
			"head_tube_angle %g is parallel to the hub line", spec.HeadTubeAngle)
	}
	xOffset := spec.ForkOffset / cos

	// Where the steering axis crosses the hub's horizontal line.
	axisFoot := geom.Point{X: frontHub.X - xOffset, Y: frontHub.Y}

	bottom = geom.VectorEndpoint(axisFoot, spec.ForkLength, spec.HeadTubeAngle)
	top = geom.VectorEndpoint(bottom, spec.HeadTubeLength, spec.HeadTubeAngle)
	return bottom, top, nil
}

// stemSegment derives the stem from the head tube top: a steerer extension
// along the head tube axis, then the stem vector rotated off it.
func stemSegment(spec BicycleSpec, headTop geom.Point) geom.Segment {
	clamp := geom.VectorEndpoint(headTop, steererExtension, spec.HeadTubeAngle)
	bar := geom.VectorEndpoint(clamp, spec.StemLength+handlebarRadius,
		spec.HeadTubeAngle-spec.StemAngle+90)
	return geom.Segment{A: clamp, B: bar}
}

// saddleSegment derives the saddle rails from the bottom bracket: the seat
// post point along the seat tube axis at saddle height, then the rail
// endpoints offset horizontally by half the saddle length minus set back.
func saddleSegment(spec BicycleSpec, rider RiderSpec, bb geom.Point) geom.Segment {
	post := geom.VectorEndpoint(bb, rider.SaddleHeight, spec.SeatTubeAngle)
	half := rider.SaddleLength / 2
	return geom.Segment{
		A: geom.Point{X: post.X - half - rider.SaddleSetBack, Y: post.Y},
		B: geom.Point{X: post.X + half - rider.SaddleSetBack, Y: post.Y},
	}
}

// checkFinite guards the no-NaN/Inf output contract. Validation should make
// this unreachable; a hit means a derivation bug, reported as INTERNAL_ERROR.
func (l *Layout) checkFinite() error {
	points := []geom.Point{
		l.BottomBracket, l.RearHub, l.FrontHub,
		l.HeadTube.A, l.HeadTube.B, l.SeatTube.B,
	}
	if l.Stem != nil {
		points = append(points, l.Stem.A, l.Stem.B)
	}
	if l.Saddle != nil {
		points = append(points, l.Saddle.A, l.Saddle.B)
	}
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return errors.New(errors.ErrCodeInternal, "derived a non-finite coordinate")
		}
	}
	return nil
}

// =============================================================================
// Serialization
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l *Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	return &l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l *Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
