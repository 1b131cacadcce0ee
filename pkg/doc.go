// Package pkg provides the core libraries for bikefit frame geometry.
//
// # Overview
//
// bikefit derives the full 2D geometry of a bicycle frame from the handful
// of measurements a manufacturer actually publishes — wheelbase, chainstay
// length, tube angles and lengths — and turns it into drawings and
// side-by-side comparisons. The pkg directory is organized into three main
// areas:
//
//  1. Domain logic (geometry primitives, the frame derivation, rendering)
//  2. Infrastructure (caching, persistence, observability)
//  3. [pipeline] - Orchestration (load → compute → render)
//
// # Architecture
//
// The typical data flow through bikefit:
//
//	Spec file (JSON/TOML)
//	         ↓
//	    [io] package (decode + key presence validation)
//	         ↓
//	    [frame] package (derive the layout from the spec)
//	         ↓
//	    [render] package (draw the layout)
//	         ↓
//	    SVG/PNG/PDF/JSON output
//
// # Quick Start
//
// Compute a frame layout and render it:
//
//	import (
//	    "github.com/cschone/bikefit/pkg/frame"
//	    "github.com/cschone/bikefit/pkg/render"
//	)
//
//	// 1. Derive the layout
//	layout, err := frame.Compute(frame.DefaultSpec(), nil)
//	if err != nil {
//	    return err
//	}
//
//	// 2. Render to SVG
//	svg := render.RenderSVG([]*frame.Layout{layout}, render.WithLegend())
//
// # Main Packages
//
// ## Domain Logic
//
// [geom] - 2D points, segments, and the polar endpoint construction every
// frame derivation step is built from.
//
// [frame] - The geometry engine: BicycleSpec validation, the derivation
// chain from hubs to saddle, measurement projection, and layout
// serialization.
//
// [render] - SVG drawing of one or more layouts, plus PNG/PDF conversion
// via rsvg-convert.
//
// [io] - Spec file reading and writing in JSON and TOML.
//
// ## Infrastructure
//
// [cache] - Layout and artifact caching with file, Redis, and null
// backends. Keys are content hashes of the inputs plus render options.
//
// [store] - Persistent bike library with memory and MongoDB backends.
//
// [observability] - Optional instrumentation hooks for pipeline and cache
// events.
//
// [errors] - Structured errors with stable codes shared by the CLI and the
// HTTP API.
//
// [buildinfo] - Version information injected at build time.
//
// ## Orchestration
//
// [pipeline] - The load → compute → render Runner shared by the CLI and
// the API, including all caching logic.
package pkg
