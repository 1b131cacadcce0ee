package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cschone/bikefit/pkg/frame"
	bikeio "github.com/cschone/bikefit/pkg/io"
	"github.com/cschone/bikefit/pkg/pipeline"
)

// computeOpts holds the command-line flags for the compute command.
type computeOpts struct {
	output  string // output file path (single input only)
	noCache bool   // bypass the layout cache
	refresh bool   // recompute even when cached
}

// newComputeCmd creates the compute command. It derives the full frame
// layout from one or more spec files and writes each as a layout JSON file.
func newComputeCmd() *cobra.Command {
	var opts computeOpts

	cmd := &cobra.Command{
		Use:   "compute [file...]",
		Short: "Derive frame layouts from bicycle spec files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "" && len(args) > 1 {
				return fmt.Errorf("--output only applies to a single input file")
			}
			return runCompute(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (defaults to <input>.layout.json, \"-\" for stdout)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the layout cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached layout exists")

	return cmd
}

func runCompute(ctx context.Context, inputs []string, opts *computeOpts) error {
	logger := loggerFromContext(ctx)

	c, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	for _, input := range inputs {
		prog := newProgress(logger)

		spec, rider, err := bikeio.LoadOrDefault(input)
		if err != nil {
			printWarning("%s: %s (using example bike)", input, err)
		}

		layouts, hit, err := runner.ComputeWithCacheInfo(ctx, []frame.BicycleSpec{spec}, rider, pipeline.Options{
			Refresh: opts.refresh,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		layout := layouts[0]
		prog.done(fmt.Sprintf("Computed %s", spec.Name))

		path := opts.output
		if path == "" {
			path = layoutPath(input)
		}
		if path == "-" {
			data, err := frame.MarshalLayout(layout)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			continue
		}
		if err := frame.WriteLayoutFile(layout, path); err != nil {
			return err
		}

		printSuccess("%s", spec.Name)
		printFile(path)
		printStats(1, hit)
	}
	return nil
}

// layoutPath derives the layout output path from the spec input path.
func layoutPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}
