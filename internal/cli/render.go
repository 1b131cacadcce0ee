package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cschone/bikefit/pkg/frame"
	bikeio "github.com/cschone/bikefit/pkg/io"
	"github.com/cschone/bikefit/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple formats)
	formats  []string // output formats: "svg", "pdf", "png", "json"
	grid     bool     // draw a 100mm reference grid
	legend   bool     // draw a legend naming each bike
	noWheels bool     // suppress wheel circles
	scale    float64  // pixels per millimeter
	noCache  bool     // bypass the cache
	refresh  bool     // re-render even when cached
}

// newRenderCmd creates the render command for drawing one or more bikes.
// All input bikes are overlaid on a single drawing, which is what makes
// geometry differences between frames visible.
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		legend: true,
		scale:  pipeline.DefaultScale,
	}

	cmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Draw bicycle frames to SVG, PNG, or PDF",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return runRenderCmd(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.grid, "grid", false, "draw a 100mm reference grid")
	cmd.Flags().BoolVar(&opts.legend, "legend", opts.legend, "draw a legend naming each bike")
	cmd.Flags().BoolVar(&opts.noWheels, "no-wheels", false, "suppress the wheel circles")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "pixels per millimeter")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

func runRenderCmd(ctx context.Context, inputs []string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	c, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	// Load every input up front so one bad file warns before any rendering.
	var specs []frame.BicycleSpec
	var rider *frame.RiderSpec
	for _, input := range inputs {
		spec, fileRider, err := bikeio.LoadOrDefault(input)
		if err != nil {
			printWarning("%s: %s (using example bike)", input, err)
		}
		specs = append(specs, spec)
		if fileRider != nil {
			rider = fileRider
		}
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d bike(s)", len(specs)))
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Specs:   specs,
		Rider:   rider,
		Refresh: opts.refresh,
		Formats: opts.formats,
		Grid:    opts.grid,
		Legend:  opts.legend,
		NoWheel: opts.noWheels,
		Scale:   opts.scale,
		Logger:  logger,
	})
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError(err.Error())
		return err
	}
	spinner.Stop()

	base := basePath(opts.output, inputs[0])
	for _, format := range opts.formats {
		var path string
		if opts.output != "" && len(opts.formats) == 1 {
			path = opts.output
		} else {
			path = base + "." + format
		}

		out, err := openOutput(path)
		if err != nil {
			return err
		}
		if _, err := out.Write(result.Artifacts[format]); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		printFile(path)
	}

	printSuccess("Rendered %s", strings.Join(opts.formats, ", "))
	printStats(result.Stats.BikeCount, result.CacheInfo.RenderHit)
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output carries a
// format extension (.svg, .png, ...), that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path. An empty path or "-"
// returns stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
