package frame

import (
	"math"
	"reflect"
	"testing"

	"github.com/cschone/bikefit/pkg/errors"
	"github.com/cschone/bikefit/pkg/geom"
)

// fixtureSpec is the documented Large road frame used as the regression
// fixture. Pinned values below were captured from a verified run.
func fixtureSpec() BicycleSpec {
	return DefaultSpec()
}

func TestComputeFixture(t *testing.T) {
	l, err := Compute(fixtureSpec(), nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	const tol = 1e-2

	// Rear hub: x = -sqrt(450^2 - 75^2), y = wheel radius.
	if got, want := l.RearHub.X, -math.Sqrt(450*450-75*75); math.Abs(got-want) > 1e-9 {
		t.Errorf("RearHub.X = %v, want %v", got, want)
	}
	if math.Abs(l.RearHub.X - -443.706) > tol {
		t.Errorf("RearHub.X = %v, want ≈ -443.706", l.RearHub.X)
	}
	if l.RearHub.Y != 350 {
		t.Errorf("RearHub.Y = %v, want 350", l.RearHub.Y)
	}

	// Bottom bracket sits bb_drop below the hub line.
	if l.BottomBracket.X != 0 || l.BottomBracket.Y != 275 {
		t.Errorf("BottomBracket = %v, want (0, 275)", l.BottomBracket)
	}

	// Pinned scalar measurements.
	if math.Abs(l.TopTubeLength-563.796) > tol {
		t.Errorf("TopTubeLength = %v, want ≈ 563.796", l.TopTubeLength)
	}
	if math.Abs(l.DownTubeLength-641.207) > tol {
		t.Errorf("DownTubeLength = %v, want ≈ 641.207", l.DownTubeLength)
	}

	// Wheels share the spec diameter and sit on the hubs.
	if l.RearWheel.Diameter != 700 || l.FrontWheel.Diameter != 700 {
		t.Error("wheel diameters should both be 700")
	}
	if l.RearWheel.Center != l.RearHub || l.FrontWheel.Center != l.FrontHub {
		t.Error("wheel centers should coincide with hubs")
	}
}

func TestComputeWheelbaseInvariant(t *testing.T) {
	specs := []BicycleSpec{
		fixtureSpec(),
		func() BicycleSpec {
			s := fixtureSpec()
			s.Wheelbase = 995.2
			s.ChainstayLength = 410
			s.HeadTubeAngle = 73.0
			return s
		}(),
	}
	for _, spec := range specs {
		l, err := Compute(spec, nil)
		if err != nil {
			t.Fatalf("Compute: %v", err)
		}
		if got := l.FrontHub.X - l.RearHub.X; math.Abs(got-spec.Wheelbase) > 1e-9 {
			t.Errorf("front-rear hub distance = %v, want wheelbase %v", got, spec.Wheelbase)
		}
		if l.FrontHub.Y != l.RearHub.Y {
			t.Error("hubs must share the same height")
		}
	}
}

func TestComputePythagoreanConsistency(t *testing.T) {
	spec := fixtureSpec()
	l, err := Compute(spec, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// Reconstructed chainstay length must match the spec exactly.
	if got := geom.Distance(l.RearHub, l.BottomBracket); math.Abs(got-spec.ChainstayLength) > 1e-9 {
		t.Errorf("distance(rear hub, bb) = %v, want %v", got, spec.ChainstayLength)
	}
}

func TestComputeDegenerateChainstay(t *testing.T) {
	spec := fixtureSpec()
	spec.ChainstayLength = spec.BBDrop

	l, err := Compute(spec, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// Right triangle collapses: rear hub directly above the bottom bracket.
	if l.RearHub.X != 0 {
		t.Errorf("RearHub.X = %v, want 0", l.RearHub.X)
	}
}

func TestComputeChainstayTooShort(t *testing.T) {
	spec := fixtureSpec()
	spec.ChainstayLength = 74 // less than bb_drop 75

	if _, err := Compute(spec, nil); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Fatalf("err = %v, want INVALID_GEOMETRY", err)
	}
}

func TestComputeSingularHeadAngle(t *testing.T) {
	spec := fixtureSpec()
	spec.HeadTubeAngle = 0

	if _, err := Compute(spec, nil); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Fatalf("err = %v, want INVALID_GEOMETRY", err)
	}

	// 90° is fine: the divisor is cos(0) = 1, a vertical head tube.
	spec.HeadTubeAngle = 90
	l, err := Compute(spec, nil)
	if err != nil {
		t.Fatalf("Compute with vertical head tube: %v", err)
	}
	if math.Abs(l.HeadTube.A.X-l.HeadTube.B.X) > 1e-9 {
		t.Error("vertical head tube should have equal x at both ends")
	}
}

func TestComputeSegmentsConnect(t *testing.T) {
	l, err := Compute(fixtureSpec(), nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// Each derived segment joins two already-derived anchor points.
	if l.Chainstay.A != l.BottomBracket || l.Chainstay.B != l.RearHub {
		t.Error("chainstay should join bottom bracket and rear hub")
	}
	if l.SeatStay.A != l.SeatTube.B || l.SeatStay.B != l.RearHub {
		t.Error("seat stay should join seat tube top and rear hub")
	}
	if l.Fork.A != l.FrontHub || l.Fork.B != l.HeadTube.A {
		t.Error("fork should join front hub and head tube bottom")
	}
	if l.TopTube.A != l.HeadTube.B || l.TopTube.B != l.SeatTube.B {
		t.Error("top tube should join head tube top and seat tube top")
	}
	if l.DownTube.A != l.HeadTube.A || l.DownTube.B != l.BottomBracket {
		t.Error("down tube should join head tube bottom and bottom bracket")
	}
	if l.SeatTube.A != l.BottomBracket {
		t.Error("seat tube should start at the bottom bracket")
	}

	// Head and seat tube segments have the spec lengths.
	spec := fixtureSpec()
	if got := l.HeadTube.Length(); math.Abs(got-spec.HeadTubeLength) > 1e-9 {
		t.Errorf("head tube length = %v, want %v", got, spec.HeadTubeLength)
	}
	if got := l.SeatTube.Length(); math.Abs(got-spec.SeatTubeLength) > 1e-9 {
		t.Errorf("seat tube length = %v, want %v", got, spec.SeatTubeLength)
	}
}

func TestComputeDeterministic(t *testing.T) {
	spec := fixtureSpec()
	rider := &RiderSpec{SaddleHeight: 760, SaddleLength: 270, SaddleSetBack: 20}

	a, err := Compute(spec, rider)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, err := Compute(spec, rider)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must produce bit-identical layouts")
	}
}

func TestComputeOptionalSaddle(t *testing.T) {
	spec := fixtureSpec()

	l, err := Compute(spec, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if l.Saddle != nil {
		t.Error("saddle should be absent without a rider spec")
	}

	rider := &RiderSpec{SaddleHeight: 760, SaddleLength: 270, SaddleSetBack: 20}
	l, err = Compute(spec, rider)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if l.Saddle == nil {
		t.Fatal("saddle should be present with a rider spec")
	}

	// Rails are level, saddle_length long, set back behind the post point.
	if l.Saddle.A.Y != l.Saddle.B.Y {
		t.Error("saddle rails should be horizontal")
	}
	if got := l.Saddle.Length(); math.Abs(got-rider.SaddleLength) > 1e-9 {
		t.Errorf("saddle length = %v, want %v", got, rider.SaddleLength)
	}
	post := geom.VectorEndpoint(l.BottomBracket, rider.SaddleHeight, spec.SeatTubeAngle)
	mid := (l.Saddle.A.X + l.Saddle.B.X) / 2
	if math.Abs(mid-(post.X-rider.SaddleSetBack)) > 1e-9 {
		t.Errorf("saddle midpoint x = %v, want %v", mid, post.X-rider.SaddleSetBack)
	}
}

func TestComputeOptionalStem(t *testing.T) {
	spec := fixtureSpec()

	l, err := Compute(spec, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if l.Stem != nil {
		t.Error("stem should be absent without stem dimensions")
	}

	spec.StemLength = 100
	spec.StemAngle = 6
	l, err = Compute(spec, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if l.Stem == nil {
		t.Fatal("stem should be present with stem dimensions")
	}
	if got, want := l.Stem.Length(), spec.StemLength+handlebarRadius; math.Abs(got-want) > 1e-9 {
		t.Errorf("stem length = %v, want %v", got, want)
	}
	// A conventional stem points forward and slightly up from the clamp.
	if l.Stem.B.X <= l.Stem.A.X {
		t.Error("stem should point toward the front of the bike")
	}
	if l.Stem.B.Y <= l.Stem.A.Y {
		t.Error("stem at 6° rise should point upward")
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	rider := &RiderSpec{SaddleHeight: 760, SaddleLength: 270, SaddleSetBack: 20}
	l, err := Compute(fixtureSpec(), rider)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if !reflect.DeepEqual(l, got) {
		t.Error("layout should survive a JSON round trip")
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	l, err := Compute(fixtureSpec(), nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	path := t.TempDir() + "/layout.json"
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if !reflect.DeepEqual(l, got) {
		t.Error("layout should survive a file round trip")
	}
}
