package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	"github.com/harishkotra/SketchStack/pkg/pipeline"
)

// layoutFile is the document written by the layout command.
type layoutFile struct {
	Orientation string                   `json:"orientation"`
	Ranking     string                   `json:"ranking"`
	Nodes       []diagram.PositionedNode `json:"nodes"`
	Edges       []diagram.Edge           `json:"edges"`
}

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		lf     layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [plan.json]",
		Short: "Compute swimlane positions for a plan",
		Long: `Compute node positions for an architecture plan and write them as JSON.

The output lists every node with its rank, order and box, which is what the
draw.io and Excalidraw renderers consume.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, lf)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	lf.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string, lf layoutFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := lf.apply(cfg)
	if err != nil {
		return err
	}

	p, err := readPlan(ctx, input, c)
	if err != nil {
		return err
	}
	prog := newProgress(loggerFromContext(ctx))
	d := diagram.Derive(p)
	nodes := pipeline.Arrange(d, opts)
	prog.done("Arranged plan", "ranking", opts.Ranking)

	if output == "" {
		output = outputBase("", input, "architecture") + ".layout.json"
	}
	data, err := json.MarshalIndent(layoutFile{
		Orientation: string(opts.Orientation),
		Ranking:     string(opts.Ranking),
		Nodes:       nodes,
		Edges:       d.Edges,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	c.printSuccess("Layout complete")
	c.printFile(output)
	c.printDetail("%s, %s", plural(len(nodes), "node"), plural(len(d.Edges), "edge"))
	c.printNextStep("Render", fmt.Sprintf("%s render %s", appName, input))
	return nil
}
