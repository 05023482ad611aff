package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harishkotra/SketchStack/pkg/presets"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listWrapStyle     = lipgloss.NewStyle().Foreground(colorGray).Width(72).PaddingLeft(4)
)

// PresetPickerModel is the bubbletea model behind "generate --pick".
type PresetPickerModel struct {
	Presets  []presets.Preset
	Cursor   int
	Selected *presets.Preset
}

// NewPresetPickerModel creates a picker over ps.
func NewPresetPickerModel(ps []presets.Preset) PresetPickerModel {
	return PresetPickerModel{Presets: ps}
}

func (m PresetPickerModel) Init() tea.Cmd {
	return nil
}

func (m PresetPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Presets)-1 {
			m.Cursor++
		}
	case "enter":
		if len(m.Presets) == 0 {
			return m, tea.Quit
		}
		p := m.Presets[m.Cursor]
		m.Selected = &p
		return m, tea.Quit
	}
	return m, nil
}

func (m PresetPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Preset"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ generate  q quit"))
	b.WriteString("\n\n")

	for i, p := range m.Presets {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		meta := listDimStyle.Render(fmt.Sprintf("%s · %s", p.Provider, styleOrAuto(string(p.Style))))
		b.WriteString(style.Render(fmt.Sprintf("%s%-24s", cursor, p.Name)) + " " + meta + "\n")
		if i == m.Cursor {
			b.WriteString(listWrapStyle.Render(p.Description))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Presets))))
	return b.String()
}

// pickPreset runs the picker and returns the chosen preset, or nil when the
// user quits.
func pickPreset(ps []presets.Preset) (*presets.Preset, error) {
	final, err := tea.NewProgram(NewPresetPickerModel(ps)).Run()
	if err != nil {
		return nil, fmt.Errorf("preset picker: %w", err)
	}
	return final.(PresetPickerModel).Selected, nil
}

func styleOrAuto(s string) string {
	if s == "" {
		return "auto"
	}
	return s
}
