package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harishkotra/SketchStack/pkg/config"
	"github.com/harishkotra/SketchStack/pkg/pipeline"
	"github.com/harishkotra/SketchStack/pkg/presets"
)

// generateOpts holds the flags shared by generate and refine.
type generateOpts struct {
	output   string
	formats  string
	provider string
	style    string
	model    string
	preset   string
	pick     bool
	noCache  bool
	quiet    bool
}

func (o *generateOpts) addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output base path (default: architecture)")
	cmd.Flags().StringVarP(&o.formats, "format", "f", "", "output format(s): drawio, excalidraw (default), plan, dot, svg, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&o.model, "model", "", "override the configured model")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the model response cache")
	cmd.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "skip the component table")
}

// generateCommand creates the command that turns a description into a
// diagram.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [description...]",
		Short: "Generate a diagram from a description",
		Long: `Generate an architecture diagram from a plain-language description.

The description is sent to the configured model, the reply is validated
(and repaired if needed), laid out in swimlanes and written as a draw.io
document and an Excalidraw scene. Use --preset or --pick to start from one of
the built-in examples.`,
		Example: `  sketchstack generate "A URL shortener with a Redis cache and Postgres"
  sketchstack generate --preset rag-pipeline -f drawio,svg
  sketchstack generate --pick`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.provider, "provider", "", "cloud provider: aws, gcp, azure, neutral")
	cmd.Flags().StringVar(&opts.style, "style", "", "architecture style (default: detected by the model)")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "start from a preset id (see 'sketchstack presets')")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose a preset interactively")
	opts.addOutputFlags(cmd)

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, description string, opts generateOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	req, err := c.resolveRequest(cfg, description, opts)
	if err != nil {
		return err
	}
	if req == nil {
		return nil
	}

	runner, cleanup, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer cleanup()

	spinner := newSpinner(ctx, fmt.Sprintf("Generating with %s...", modelName(cfg, opts.model)))
	spinner.Start()
	res, err := runner.Generate(ctx, *req)
	if err != nil {
		spinner.StopWithError(c, "Generation failed")
		return err
	}
	spinner.StopWithSuccess(c, "Diagram generated")

	if err := c.report(ctx, res, cfg, opts); err != nil {
		return err
	}
	if cfg.Session.Backend != config.BackendMemory {
		c.printNextStep("Refine", fmt.Sprintf("%s refine --session %s \"add a cache\"", appName, res.SessionID))
	}
	return nil
}

// resolveRequest merges the description, the preset and the flags. A nil
// request without error means the user left the picker.
func (c *CLI) resolveRequest(cfg config.Config, description string, opts generateOpts) (*pipeline.GenerateRequest, error) {
	req := &pipeline.GenerateRequest{
		Description:       description,
		CloudProvider:     opts.provider,
		ArchitectureStyle: opts.style,
		Model:             opts.model,
	}

	var preset *presets.Preset
	if opts.pick || opts.preset != "" {
		catalog, err := presets.Load(cfg.PresetsFile)
		if err != nil {
			return nil, err
		}
		if opts.pick {
			preset, err = pickPreset(catalog.All())
			if err != nil {
				return nil, err
			}
			if preset == nil {
				return nil, nil
			}
		} else {
			p, ok := catalog.Get(opts.preset)
			if !ok {
				return nil, fmt.Errorf("unknown preset %q", opts.preset)
			}
			preset = &p
		}
	}

	if preset != nil {
		if req.Description == "" {
			req.Description = preset.Description
		}
		if req.CloudProvider == "" {
			req.CloudProvider = string(preset.Provider)
		}
		if req.ArchitectureStyle == "" {
			req.ArchitectureStyle = string(preset.Style)
		}
		c.printInfo("Preset %s", StyleHighlight.Render(preset.Name))
	}

	if strings.TrimSpace(req.Description) == "" {
		return nil, errors.New("a description, --preset or --pick is required")
	}
	return req, nil
}

// report writes the requested files and prints the summary of a run.
func (c *CLI) report(ctx context.Context, res *pipeline.Result, cfg config.Config, opts generateOpts) error {
	formats := parseFormats(opts.formats)
	if err := validateFormats(formats); err != nil {
		return err
	}
	files, err := writeOutputs(ctx, outputBase(opts.output, "", "architecture"), formats, rendered{
		Plan:        res.Plan,
		Diagram:     res.Diagram,
		Artifacts:   &res.Artifacts,
		Orientation: cfg.LayoutOptions().Orientation,
	})
	if err != nil {
		return err
	}

	if !opts.quiet {
		c.printComponents(res.Diagram.Nodes)
	}
	c.printStats(res.Stats)
	c.printNewline()
	c.printKeyValue("Session", res.SessionID)
	c.printKeyValue("Style", string(res.Plan.ArchitectureStyle))
	c.printKeyValue("Provider", string(res.Provider))
	c.printLink("Edit", res.ShareURL)
	c.printLink("View", res.ViewerURL)
	c.printNewline()
	c.printWritten(files)
	return nil
}

func modelName(cfg config.Config, override string) string {
	if override != "" {
		return override
	}
	return cfg.Ollama.Model
}

// refineCommand creates the command that applies an instruction to a stored
// session.
func (c *CLI) refineCommand() *cobra.Command {
	var (
		opts      generateOpts
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "refine --session ID instruction...",
		Short: "Refine a stored diagram with an instruction",
		Long: `Send a stored architecture plan back to the model with an instruction and
re-render the result. Sessions only outlive the process with the file, redis
or mongo session backend.`,
		Example: `  sketchstack refine --session 2f6c... "add a CDN in front of the web app"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRefine(cmd.Context(), sessionID, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id printed by generate")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "switch cloud provider")
	_ = cmd.MarkFlagRequired("session")
	opts.addOutputFlags(cmd)

	return cmd
}

func (c *CLI) runRefine(ctx context.Context, sessionID, instruction string, opts generateOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Session.Backend == config.BackendMemory {
		c.printWarning("the memory session backend forgets sessions between runs")
	}

	runner, cleanup, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer cleanup()

	spinner := newSpinner(ctx, "Refining...")
	spinner.Start()
	res, err := runner.Refine(ctx, pipeline.RefineRequest{
		SessionID:     sessionID,
		Instruction:   instruction,
		CloudProvider: opts.provider,
		Model:         opts.model,
	})
	if err != nil {
		spinner.StopWithError(c, "Refinement failed")
		return err
	}
	spinner.StopWithSuccess(c, "Diagram refined")
	return c.report(ctx, res, cfg, opts)
}
