package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/cschone/bikefit/pkg/frame"
	bikeio "github.com/cschone/bikefit/pkg/io"
	"github.com/cschone/bikefit/pkg/pipeline"
)

// compareOpts holds the command-line flags for the compare command.
type compareOpts struct {
	interactive bool // browse the comparison in a TUI
	noCache     bool // bypass the layout cache
}

// newCompareCmd creates the compare command. It computes the layout of every
// input bike and tabulates the derived measurements side by side, which is
// the number-level counterpart of an overlaid render.
func newCompareCmd() *cobra.Command {
	var opts compareOpts

	cmd := &cobra.Command{
		Use:   "compare [file...]",
		Short: "Tabulate frame measurements across bikes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the comparison interactively")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the layout cache")

	return cmd
}

func runCompare(ctx context.Context, inputs []string, opts *compareOpts) error {
	logger := loggerFromContext(ctx)

	c, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

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

	layouts, err := runner.Compute(ctx, specs, rider, pipeline.Options{Logger: logger})
	if err != nil {
		return err
	}

	if opts.interactive {
		model := newCompareModel(layouts)
		_, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
		return err
	}

	fmt.Println(compareTable(layouts))
	return nil
}

// compareTable renders the measurement comparison as a lipgloss table.
func compareTable(layouts []*frame.Layout) string {
	headers := []string{"Measurement"}
	for _, l := range layouts {
		name := l.Name
		if l.FrameSize != "" {
			name = fmt.Sprintf("%s (%s)", l.Name, l.FrameSize)
		}
		headers = append(headers, name)
	}

	var rows [][]string
	for _, row := range frame.CompareRows(layouts) {
		rows = append(rows, append([]string{row.Name}, row.Values...))
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if col == 0 {
				return StyleDim.Padding(0, 1)
			}
			return styleCell
		}).
		Render()
}
