// Package geom provides the 2D vector and trigonometry primitives used by the
// frame geometry engine.
//
// All coordinates are plain float64 millimeters. Angles are degrees measured
// from the horizontal, using the bicycle-diagram convention: the direction of
// a vector at angle a is π − radians(a), so a 73° seat tube leans backward
// from vertical and a 0° vector points in the negative x direction. This
// matches how frame geometry charts are drawn, with the front of the bike
// toward positive x.
package geom

import "math"

// Point is a position in the 2D frame plane.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Segment is a straight line between two points. Every structural tube in a
// computed layout is represented as a Segment.
type Segment struct {
	A Point `json:"a" bson:"a"`
	B Point `json:"b" bson:"b"`
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return Distance(s.A, s.B)
}

// Radians converts an angle in degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// VectorEndpoint returns the endpoint reached by projecting a vector of the
// given length from p at the given angle in degrees.
//
// The direction is π − radians(angleDeg): angle 0 is horizontal pointing
// toward the rear of the bike, angle 90 is straight up. A zero-length vector
// returns p unchanged for any angle.
func VectorEndpoint(p Point, length, angleDeg float64) Point {
	dir := math.Pi - Radians(angleDeg)
	return Point{
		X: p.X + length*math.Cos(dir),
		Y: p.Y + length*math.Sin(dir),
	}
}

// Distance returns the Euclidean distance between two points.
// It is symmetric and zero iff a == b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
