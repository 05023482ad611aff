package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/harishkotra/SketchStack/pkg/presets"
)

// presetsCommand lists the example descriptions.
func (c *CLI) presetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the built-in example architectures",
		Long: `List the example descriptions shipped with SketchStack, plus any loaded
from the presets_file setting. Pass an id to 'generate --preset'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := c.loadPresets()
			if err != nil {
				return err
			}
			c.printPresets(catalog.All())
			return nil
		},
	}
	cmd.AddCommand(c.presetsShowCommand())
	return cmd
}

func (c *CLI) presetsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := c.loadPresets()
			if err != nil {
				return err
			}
			p, ok := catalog.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown preset %q", args[0])
			}
			c.printKeyValue("Name", p.Name)
			c.printKeyValue("Provider", string(p.Provider))
			c.printKeyValue("Style", styleOrAuto(string(p.Style)))
			c.printNewline()
			c.printf("%s\n", p.Description)
			c.printNextStep("Generate", fmt.Sprintf("%s generate --preset %s", appName, p.ID))
			return nil
		},
	}
}

func (c *CLI) loadPresets() (*presets.Catalog, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return presets.Load(cfg.PresetsFile)
}

func (c *CLI) printPresets(ps []presets.Preset) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("ID", "NAME", "PROVIDER", "STYLE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if col == 0 {
				return StyleHighlight.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, p := range ps {
		t.Row(p.ID, p.Name, string(p.Provider), styleOrAuto(string(p.Style)))
	}
	c.printf("%s\n", t.Render())
}
