package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cschone/bikefit/pkg/frame"
)

func testLayout(t *testing.T, name string) *frame.Layout {
	t.Helper()
	spec := frame.DefaultSpec()
	spec.Name = name
	l, err := frame.Compute(spec, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return l
}

func TestRenderSVG(t *testing.T) {
	l := testLayout(t, "Solo")
	svg := string(RenderSVG([]*frame.Layout{l}))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Error("output should start with an svg element")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("output should end with a closing svg tag")
	}

	// 7 frame segments plus wheel, hub, and bb circles.
	if got := strings.Count(svg, "<line"); got != 7 {
		t.Errorf("line count = %d, want 7", got)
	}
	if got := strings.Count(svg, "<circle"); got != 5 {
		t.Errorf("circle count = %d, want 5 (2 wheels, 2 hubs, bb shell)", got)
	}
}

func TestRenderSVGMultipleBikes(t *testing.T) {
	a := testLayout(t, "First")
	b := testLayout(t, "Second")

	svg := string(RenderSVG([]*frame.Layout{a, b}, WithLegend()))

	// Each bike gets its own color group from the palette.
	if !strings.Contains(svg, colorHex("b")) || !strings.Contains(svg, colorHex("g")) {
		t.Error("bikes should cycle through the palette")
	}
	if !strings.Contains(svg, "First") || !strings.Contains(svg, "Second") {
		t.Error("legend should name both bikes")
	}
}

func TestRenderSVGExplicitColor(t *testing.T) {
	l := testLayout(t, "Painted")
	l.Color = "r"

	svg := string(RenderSVG([]*frame.Layout{l}))
	if !strings.Contains(svg, colorHex("r")) {
		t.Error("declared color should win over the palette")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	l := testLayout(t, "Bare")

	plain := RenderSVG([]*frame.Layout{l})
	grid := RenderSVG([]*frame.Layout{l}, WithGrid())
	if !bytes.Contains(grid, []byte("#dddddd")) {
		t.Error("WithGrid should draw grid lines")
	}
	if bytes.Contains(plain, []byte("#dddddd")) {
		t.Error("grid should be off by default")
	}

	noWheels := string(RenderSVG([]*frame.Layout{l}, WithoutWheels()))
	if got := strings.Count(noWheels, "<circle"); got != 1 {
		t.Errorf("circle count without wheels = %d, want 1 (bb shell)", got)
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	l := testLayout(t, "Stable")
	a := RenderSVG([]*frame.Layout{l}, WithLegend(), WithGrid())
	b := RenderSVG([]*frame.Layout{l}, WithLegend(), WithGrid())
	if !bytes.Equal(a, b) {
		t.Error("rendering must be deterministic")
	}
}

func TestRenderSVGEscapesNames(t *testing.T) {
	l := testLayout(t, "A<B&C")
	svg := string(RenderSVG([]*frame.Layout{l}, WithLegend()))
	if strings.Contains(svg, "A<B&C") {
		t.Error("names must be escaped in the legend")
	}
	if !strings.Contains(svg, "A&lt;B&amp;C") {
		t.Error("escaped name should appear in the legend")
	}
}

func TestColorForIndex(t *testing.T) {
	if ColorForIndex(0) != "b" || ColorForIndex(2) != "r" {
		t.Error("palette order should match the original color cycle")
	}
	if ColorForIndex(8) != ColorForIndex(0) {
		t.Error("palette should wrap after 8 colors")
	}
}
