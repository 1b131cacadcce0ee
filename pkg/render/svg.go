// Package render draws computed frame layouts.
//
// The SVG sink is the primary output; PNG is produced by converting the SVG
// with rsvg-convert. Rendering is a read-only traversal of already-computed
// layouts: nothing here feeds back into the geometry engine.
package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/cschone/bikefit/pkg/frame"
	"github.com/cschone/bikefit/pkg/geom"
)

// Margin around the drawing, millimeters of world space.
const margin = 100.0

// SVGOption configures the SVG renderer.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	grid   bool
	legend bool
	wheels bool
	scale  float64
}

// WithGrid draws a 100mm reference grid behind the frames.
func WithGrid() SVGOption { return func(r *svgRenderer) { r.grid = true } }

// WithLegend draws a legend naming each bike in its color.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

// WithoutWheels suppresses the wheel and hub circles.
func WithoutWheels() SVGOption { return func(r *svgRenderer) { r.wheels = false } }

// WithScale sets the pixels-per-millimeter scale (default 0.5).
func WithScale(s float64) SVGOption { return func(r *svgRenderer) { r.scale = s } }

// RenderSVG draws one or more layouts overlaid in a single SVG, the way the
// original tool plotted multiple bikes on one axis for comparison. Layouts
// without a color get one from the palette by position.
func RenderSVG(layouts []*frame.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{wheels: true, scale: 0.5}
	for _, opt := range opts {
		opt(&r)
	}

	minX, minY, maxX, maxY := bounds(layouts, r.wheels)
	w := (maxX - minX) * r.scale
	h := (maxY - minY) * r.scale

	// World y points up; SVG y points down. project flips the axis.
	project := func(p geom.Point) (float64, float64) {
		return (p.X - minX) * r.scale, (maxY - p.Y) * r.scale
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)

	if r.grid {
		renderGrid(&buf, minX, minY, maxX, maxY, project)
	}

	for i, l := range layouts {
		color := l.Color
		if color == "" {
			color = ColorForIndex(i)
		}
		renderBike(&buf, &r, l, colorHex(color), project)
	}

	if r.legend {
		renderLegend(&buf, layouts)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// bounds computes the world-space bounding box across all layouts.
func bounds(layouts []*frame.Layout, wheels bool) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)

	include := func(p geom.Point, pad float64) {
		minX = math.Min(minX, p.X-pad)
		minY = math.Min(minY, p.Y-pad)
		maxX = math.Max(maxX, p.X+pad)
		maxY = math.Max(maxY, p.Y+pad)
	}

	for _, l := range layouts {
		wheelPad := 0.0
		if wheels {
			wheelPad = l.RearWheel.Diameter / 2
		}
		include(l.RearHub, wheelPad)
		include(l.FrontHub, wheelPad)
		include(l.BottomBracket, 0)
		for _, s := range segments(l) {
			include(s.A, 0)
			include(s.B, 0)
		}
	}

	if len(layouts) == 0 {
		minX, minY, maxX, maxY = 0, 0, 1, 1
	}
	return minX - margin, minY - margin, maxX + margin, maxY + margin
}

// segments lists every segment of a layout, optional ones included.
func segments(l *frame.Layout) []geom.Segment {
	out := []geom.Segment{
		l.HeadTube, l.SeatTube, l.Chainstay, l.SeatStay,
		l.Fork, l.TopTube, l.DownTube,
	}
	if l.Stem != nil {
		out = append(out, *l.Stem)
	}
	if l.Saddle != nil {
		out = append(out, *l.Saddle)
	}
	return out
}

func renderBike(buf *bytes.Buffer, r *svgRenderer, l *frame.Layout, hex string, project func(geom.Point) (float64, float64)) {
	fmt.Fprintf(buf, `<g stroke="%s" stroke-width="3" fill="none">`+"\n", hex)

	if r.wheels {
		for _, wheel := range []frame.Wheel{l.RearWheel, l.FrontWheel} {
			cx, cy := project(wheel.Center)
			// Wheel and hub, dotted like the original plot.
			fmt.Fprintf(buf, `<circle cx="%.2f" cy="%.2f" r="%.2f" stroke-dasharray="2 6"/>`+"\n",
				cx, cy, wheel.Diameter/2*r.scale)
			fmt.Fprintf(buf, `<circle cx="%.2f" cy="%.2f" r="%.2f" stroke-dasharray="2 6"/>`+"\n",
				cx, cy, 20*r.scale)
		}
	}

	// Bottom bracket shell.
	bx, by := project(l.BottomBracket)
	fmt.Fprintf(buf, `<circle cx="%.2f" cy="%.2f" r="%.2f"/>`+"\n", bx, by, l.BBDiameter/2*r.scale)

	for _, s := range segments(l) {
		x1, y1 := project(s.A)
		x2, y2 := project(s.B)
		fmt.Fprintf(buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", x1, y1, x2, y2)
	}

	buf.WriteString("</g>\n")
}

func renderLegend(buf *bytes.Buffer, layouts []*frame.Layout) {
	buf.WriteString(`<g font-family="sans-serif" font-size="14">` + "\n")
	for i, l := range layouts {
		color := l.Color
		if color == "" {
			color = ColorForIndex(i)
		}
		y := 20.0 + float64(i)*20
		fmt.Fprintf(buf, `<rect x="10" y="%.1f" width="12" height="12" fill="%s"/>`+"\n", y-10, colorHex(color))
		fmt.Fprintf(buf, `<text x="28" y="%.1f">%s %s</text>`+"\n", y, escapeText(l.Name), escapeText(l.FrameSize))
	}
	buf.WriteString("</g>\n")
}

func renderGrid(buf *bytes.Buffer, minX, minY, maxX, maxY float64, project func(geom.Point) (float64, float64)) {
	buf.WriteString(`<g stroke="#dddddd" stroke-width="1">` + "\n")
	for x := math.Ceil(minX/100) * 100; x <= maxX; x += 100 {
		x1, y1 := project(geom.Point{X: x, Y: minY})
		x2, y2 := project(geom.Point{X: x, Y: maxY})
		fmt.Fprintf(buf, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x1, y1, x2, y2)
	}
	for y := math.Ceil(minY/100) * 100; y <= maxY; y += 100 {
		x1, y1 := project(geom.Point{X: minX, Y: y})
		x2, y2 := project(geom.Point{X: maxX, Y: y})
		fmt.Fprintf(buf, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x1, y1, x2, y2)
	}
	buf.WriteString("</g>\n")
}

func escapeText(s string) string {
	var out bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			out.WriteString("&lt;")
		case '>':
			out.WriteString("&gt;")
		case '&':
			out.WriteString("&amp;")
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}
