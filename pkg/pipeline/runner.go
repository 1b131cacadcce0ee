package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cschone/bikefit/pkg/cache"
	"github.com/cschone/bikefit/pkg/errors"
	"github.com/cschone/bikefit/pkg/frame"
	bikeio "github.com/cschone/bikefit/pkg/io"
	"github.com/cschone/bikefit/pkg/observability"
	"github.com/cschone/bikefit/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → compute → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	specs, rider, err := r.Load(opts)
	if err != nil {
		return nil, err
	}
	result.Stats.BikeCount = len(specs)
	result.SpecHash = specHash(specs, rider)

	// Stage 2: Compute
	computeStart := time.Now()
	observability.Pipeline().OnComputeStart(ctx, len(specs))
	layouts, layoutHit, err := r.ComputeWithCacheInfo(ctx, specs, rider, opts)
	observability.Pipeline().OnComputeComplete(ctx, len(specs), time.Since(computeStart), err)
	if err != nil {
		return nil, err
	}
	result.Layouts = layouts
	result.Stats.ComputeTime = time.Since(computeStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layouts",
		"bikes", len(layouts),
		"duration", result.Stats.ComputeTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layouts, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load gathers the input specs from opts. Riders attached to spec files take
// precedence over opts.Rider when both are present.
func (r *Runner) Load(opts Options) ([]frame.BicycleSpec, *frame.RiderSpec, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, nil, err
	}

	specs := make([]frame.BicycleSpec, 0, len(opts.Specs)+len(opts.SpecPaths))
	specs = append(specs, opts.Specs...)

	rider := opts.Rider
	for _, path := range opts.SpecPaths {
		spec, fileRider, err := bikeio.ReadSpecFile(path)
		if err != nil {
			return nil, nil, err
		}
		specs = append(specs, spec)
		if fileRider != nil {
			rider = fileRider
		}
	}
	return specs, rider, nil
}

// ComputeWithCacheInfo derives layouts for all specs with caching and
// reports whether every layout came from cache.
func (r *Runner) ComputeWithCacheInfo(ctx context.Context, specs []frame.BicycleSpec, rider *frame.RiderSpec, opts Options) ([]*frame.Layout, bool, error) {
	r.applyLogger(&opts)
	opts.Rider = rider

	allHit := true
	layouts := make([]*frame.Layout, 0, len(specs))

	for _, spec := range specs {
		specData, err := json.Marshal(spec)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "failed to hash spec")
		}
		cacheKey := r.Keyer.LayoutKey(cache.Hash(specData), opts.LayoutKeyOpts())

		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				if cached, err := frame.UnmarshalLayout(data); err == nil {
					observability.Cache().OnCacheHit(ctx, "layout")
					layouts = append(layouts, cached)
					continue
				}
				// Fall through to recompute on deserialization failure.
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
		allHit = false

		layout, err := frame.Compute(spec, rider)
		if err != nil {
			return nil, false, err
		}
		layouts = append(layouts, layout)

		if data, err := frame.MarshalLayout(layout); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return layouts, allHit && len(specs) > 0, nil
}

// Compute is a convenience wrapper that discards the cache hit info.
func (r *Runner) Compute(ctx context.Context, specs []frame.BicycleSpec, rider *frame.RiderSpec, opts Options) ([]*frame.Layout, error) {
	layouts, _, err := r.ComputeWithCacheInfo(ctx, specs, rider, opts)
	return layouts, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layouts []*frame.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutHash, err := hashLayouts(layouts)
	if err != nil {
		return nil, false, err
	}

	// Try to get all formats from cache.
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := renderFormats(layouts, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layouts []*frame.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layouts, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// renderFormats produces every requested format from the layouts.
func renderFormats(layouts []*frame.Layout, opts Options) (map[string][]byte, error) {
	svgOpts := []render.SVGOption{render.WithScale(opts.Scale)}
	if opts.Grid {
		svgOpts = append(svgOpts, render.WithGrid())
	}
	if opts.Legend {
		svgOpts = append(svgOpts, render.WithLegend())
	}
	if opts.NoWheel {
		svgOpts = append(svgOpts, render.WithoutWheels())
	}

	var svg []byte
	needsSVG := func() []byte {
		if svg == nil {
			svg = render.RenderSVG(layouts, svgOpts...)
		}
		return svg
	}

	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			out[format] = needsSVG()
		case FormatPNG:
			data, err := render.ToPNG(needsSVG(), opts.Scale)
			if err != nil {
				return nil, err
			}
			out[format] = data
		case FormatPDF:
			data, err := render.ToPDF(needsSVG())
			if err != nil {
				return nil, err
			}
			out[format] = data
		case FormatJSON:
			data, err := marshalLayouts(layouts)
			if err != nil {
				return nil, err
			}
			out[format] = data
		default:
			return nil, ValidateFormat(format)
		}
	}
	return out, nil
}

// marshalLayouts serializes the layout set for the JSON artifact format.
func marshalLayouts(layouts []*frame.Layout) ([]byte, error) {
	data, err := json.MarshalIndent(layouts, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to serialize layouts")
	}
	return data, nil
}

// hashLayouts computes a content hash over the layout set for cache keys.
func hashLayouts(layouts []*frame.Layout) (string, error) {
	data, err := json.Marshal(layouts)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "failed to hash layouts")
	}
	return cache.Hash(data), nil
}

// specHash computes a content hash over the input specs and rider.
func specHash(specs []frame.BicycleSpec, rider *frame.RiderSpec) string {
	data, _ := json.Marshal(struct {
		Specs []frame.BicycleSpec `json:"specs"`
		Rider *frame.RiderSpec    `json:"rider,omitempty"`
	}{specs, rider})
	return cache.Hash(data)
}
