package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	"github.com/harishkotra/SketchStack/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary actions
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // links
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

// layerColors matches the swimlane fills of the rendered documents closely
// enough to tell layers apart in a terminal.
var layerColors = map[diagram.Layer]lipgloss.Color{
	diagram.LayerSecurity:      lipgloss.Color("203"),
	diagram.LayerApplication:   lipgloss.Color("75"),
	diagram.LayerData:          lipgloss.Color("114"),
	diagram.LayerInfra:         lipgloss.Color("179"),
	diagram.LayerObservability: lipgloss.Color("141"),
}

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *CLI) printSuccess(format string, args ...any) {
	c.printf("%s %s\n", styleIconSuccess.Render(iconSuccess), fmt.Sprintf(format, args...))
}

func (c *CLI) printError(format string, args ...any) {
	c.printf("%s %s\n", styleIconError.Render(iconError), fmt.Sprintf(format, args...))
}

func (c *CLI) printWarning(format string, args ...any) {
	c.printf("%s %s\n", styleIconWarning.Render(iconWarning), StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (c *CLI) printInfo(format string, args ...any) {
	c.printf("%s %s\n", styleIconInfo.Render(iconInfo), fmt.Sprintf(format, args...))
}

// printDetail prints an indented muted line.
func (c *CLI) printDetail(format string, args ...any) {
	c.printf("  %s\n", StyleDim.Render(fmt.Sprintf(format, args...)))
}

func (c *CLI) printFile(path string) {
	c.printf("  %s %s\n", StyleDim.Render(iconArrow), StyleValue.Render(path))
}

func (c *CLI) printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	c.printf("%s %s\n", keyStyle.Render(key), StyleValue.Render(value))
}

func (c *CLI) printLink(key, url string) {
	c.printKeyValue(key, StyleLink.Render(url))
}

func (c *CLI) printNextStep(description, cmd string) {
	c.printf("%s %s\n", StyleDim.Render(description+":"), styleCommand.Render(cmd))
}

func (c *CLI) printNewline() {
	c.printf("\n")
}

// =============================================================================
// Diagram Output
// =============================================================================

// printStats prints run statistics on a single line, e.g.
// "7 nodes · 9 edges · 2 attempts · 412ms".
func (c *CLI) printStats(s pipeline.Stats) {
	parts := []string{
		fmt.Sprintf("%d nodes", s.NodeCount),
		fmt.Sprintf("%d edges", s.EdgeCount),
	}
	if s.Attempts > 0 {
		parts = append(parts, plural(s.Attempts, "attempt"))
	}
	if s.Repairs > 0 {
		parts = append(parts, StyleWarning.Render(plural(s.Repairs, "repair")))
	}
	if total := s.ExtractTime + s.ValidateTime + s.LayoutTime + s.RenderTime; total > 0 {
		parts = append(parts, total.Round(1e6).String())
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	c.printf("  %s\n", strings.Join(parts, StyleDim.Render(" · ")))
}

// printComponents renders the diagram nodes as a table grouped by layer.
func (c *CLI) printComponents(nodes []diagram.Node) {
	rows := make([][]string, 0, len(nodes))
	layers := make([]diagram.Layer, 0, len(nodes))
	for _, layer := range diagram.ActiveLayers(nodes) {
		for _, n := range nodes {
			if n.EffectiveLayer() != layer {
				continue
			}
			rows = append(rows, []string{diagram.Glyph(n.Type), n.Label, string(n.Type), string(layer)})
			layers = append(layers, layer)
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Component", "Type", "Layer").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(layers) {
				return base
			}
			switch col {
			case 1:
				return base.Foreground(colorWhite)
			case 3:
				return base.Foreground(layerColors[layers[row]])
			default:
				return base.Foreground(colorGray)
			}
		})
	c.printf("%s\n", t.Render())
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
