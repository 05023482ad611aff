package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harishkotra/SketchStack/pkg/config"
	"github.com/harishkotra/SketchStack/pkg/layout"
	"github.com/harishkotra/SketchStack/pkg/pipeline"
	"github.com/harishkotra/SketchStack/pkg/plan"
)

// layoutFlags are the orientation and ranking overrides shared by render
// and layout.
type layoutFlags struct {
	orientation string
	ranking     string
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.orientation, "orientation", "", "flow direction: TB, LR (default: from config)")
	cmd.Flags().StringVar(&f.ranking, "ranking", "", "rank nodes by: layer, flow (default: from config)")
}

// apply overrides the configured layout options.
func (f layoutFlags) apply(cfg config.Config) (layout.Options, error) {
	opts := cfg.LayoutOptions()
	if f.orientation != "" {
		if !layout.ValidOrientation(f.orientation) {
			return opts, fmt.Errorf("invalid orientation %q: must be TB or LR", f.orientation)
		}
		opts.Orientation = layout.Orientation(f.orientation)
	}
	if f.ranking != "" {
		if !layout.ValidRanking(f.ranking) {
			return opts, fmt.Errorf("invalid ranking %q: must be layer or flow", f.ranking)
		}
		opts.Ranking = layout.Ranking(f.ranking)
	}
	return opts, nil
}

// renderCommand creates the command that renders a saved plan without
// calling the model.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output   string
		formats  string
		provider string
		lf       layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "render [plan.json]",
		Short: "Render an architecture plan file",
		Long: `Render an architecture plan written by 'generate -f plan' (or by hand).

The plan is validated against the same schema the model replies are checked
against, but no repair is attempted. Nothing leaves the machine.`,
		Example: `  sketchstack render shop.plan.json
  sketchstack render shop.plan.json -f drawio,svg --orientation LR`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], output, formats, provider, lf)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: <input> without extension)")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output format(s): drawio, excalidraw (default), plan, dot, svg, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&provider, "provider", "", "cloud provider for the shape styles (default: from config)")
	lf.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, outPath, formatsStr, providerStr string, lf layoutFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	formats := parseFormats(formatsStr)
	if err := validateFormats(formats); err != nil {
		return err
	}
	layoutOpts, err := lf.apply(cfg)
	if err != nil {
		return err
	}
	provider := cfg.DefaultProvider()
	if providerStr != "" {
		p, ok := plan.ParseProvider(providerStr)
		if !ok {
			return fmt.Errorf("unknown cloud provider %q", providerStr)
		}
		provider = p
	}

	p, err := readPlan(ctx, input, c)
	if err != nil {
		return err
	}

	d, artifacts, err := pipeline.Build(p, pipeline.BuildOptions{Provider: provider, Layout: layoutOpts})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	files, err := writeOutputs(ctx, outputBase(outPath, input, "architecture"), formats, rendered{
		Plan:        p,
		Diagram:     d,
		Artifacts:   artifacts,
		Orientation: layoutOpts.Orientation,
	})
	if err != nil {
		return err
	}

	c.printSuccess("Rendered %s", plural(len(d.Nodes), "component"))
	c.printWritten(files)
	return nil
}

// readPlan loads and validates a plan file.
func readPlan(ctx context.Context, path string, c *CLI) (plan.ArchitecturePlan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return plan.ArchitecturePlan{}, fmt.Errorf("read plan: %w", err)
	}
	p, err := plan.Validate(ctx, string(raw), plan.ArchitectureSchema(), 0, nil, plan.WithLogger(c.Logger)).Result()
	if err != nil {
		return p, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
