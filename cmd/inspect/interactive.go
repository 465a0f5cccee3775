package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/structview"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateBrowse modelState = iota
	stateEdit
)

type inspectModel struct {
	err      error
	binFile  string
	overlay  *structview.Overlay
	rows     []row
	input    textinput.Model
	status   string
	cursor   int
	height   int
	state    modelState
	editable bool
}

func newInspectModel(binFile string, ov *structview.Overlay, editable bool) *inspectModel {
	input := textinput.New()
	input.Placeholder = "value"
	input.CharLimit = 32
	input.Width = 24

	return &inspectModel{
		binFile:  binFile,
		overlay:  ov,
		rows:     buildRows(ov.Value(), "value", 0),
		input:    input,
		height:   24,
		editable: editable,
	}
}

func runInteractive(descFile, binFile string, base uint32) error {
	ov, hasData, err := load(descFile, binFile, base)
	if err != nil {
		return err
	}

	m := newInspectModel(binFile, ov, hasData)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return m.err
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.state == stateEdit {
			return m.updateEdit(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *inspectModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "enter":
		if !m.editable {
			m.status = errorStyle.Render("no buffer file loaded, values are read-only")
			break
		}
		sc, ok := m.rows[m.cursor].acc.(*structview.Scalar)
		if !ok {
			m.status = errorStyle.Render("only scalar fields are editable")
			break
		}
		m.state = stateEdit
		m.input.SetValue(scalarString(sc))
		m.input.Focus()
		return m, textinput.Blink
	case "w":
		if !m.editable {
			break
		}
		if err := os.WriteFile(m.binFile, m.overlay.Backing().Bytes(), 0o644); err != nil {
			m.status = errorStyle.Render("write failed: " + err.Error())
		} else {
			m.status = statusStyle.Render("wrote " + m.binFile)
		}
	}
	return m, nil
}

func (m *inspectModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		sc := m.rows[m.cursor].acc.(*structview.Scalar)
		if err := writeScalar(sc, m.input.Value()); err != nil {
			m.status = errorStyle.Render(err.Error())
		} else {
			m.status = statusStyle.Render(fmt.Sprintf("%s = %s", m.rows[m.cursor].label, scalarString(sc)))
		}
		m.state = stateBrowse
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func writeScalar(sc *structview.Scalar, raw string) error {
	raw = strings.TrimSpace(raw)
	switch k := sc.Kind(); {
	case k.Float():
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", raw)
		}
		sc.SetFloat(v)
	case k.Signed():
		v, err := strconv.ParseInt(raw, 0, 64)
		if err != nil {
			return fmt.Errorf("not an integer: %q", raw)
		}
		sc.SetInt(v)
	default:
		v, err := strconv.ParseUint(raw, 0, 64)
		if err != nil {
			return fmt.Errorf("not an unsigned integer: %q", raw)
		}
		sc.SetUint(v)
	}
	return nil
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("structview inspect"))
	b.WriteString("\n\n")

	visible := m.height - 6
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := start; i < end; i++ {
		line := renderRow(m.rows[i], m.editable, true)
		if i == m.cursor {
			line = selectedStyle.Render(renderRow(m.rows[i], m.editable, false))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.state == stateEdit {
		b.WriteString("new value: ")
		b.WriteString(m.input.View())
		b.WriteByte('\n')
		b.WriteString(helpStyle.Render("enter apply · esc cancel"))
	} else {
		if m.status != "" {
			b.WriteString(m.status)
			b.WriteByte('\n')
		}
		b.WriteString(helpStyle.Render("↑/↓ move · enter edit · w write file · q quit"))
	}
	return b.String()
}
