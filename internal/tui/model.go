// Package tui renders an attendance page in the terminal and forwards key
// presses to its controller.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/attendance-tracker/internal/page"
)

// focus order of the inputs
const (
	focusStudentID = iota
	focusName
	focusClass
	focusDate
	focusSearch
	focusCount
)

var (
	inputIDs    = [focusCount]string{page.FieldStudentID, page.FieldName, page.FieldClass, page.FieldDate, page.FieldSearch}
	inputLabels = [focusCount]string{"Student ID", "Name", "Class", "Date", "Search"}
)

// Model is the bubbletea model for one page session.
type Model struct {
	doc    *page.Document
	driver Driver

	inputs   [focusCount]textinput.Model
	focus    int
	selected int
	table    page.Table
	err      error

	width  int
	height int
}

// New builds a model over doc. driver receives every page action.
func New(doc *page.Document, driver Driver) Model {
	m := Model{doc: doc, driver: driver}
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 100
		m.inputs[i] = in
	}
	m.inputs[focusClass].Placeholder = "Class 1"
	m.inputs[focusDate].Placeholder = "YYYY-MM-DD"
	m.inputs[focusSearch].Placeholder = "name, student ID or date"
	m.inputs[m.focus].Focus()
	m.pull()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case RefreshMsg:
		m.pull()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m.setFocus((m.focus + 1) % focusCount), nil
	case "shift+tab":
		return m.setFocus((m.focus + focusCount - 1) % focusCount), nil
	case "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down":
		if m.selected < len(m.table.Rows)-1 {
			m.selected++
		}
		return m, nil
	case "enter":
		if m.focus == focusSearch {
			m.driver.HandleSearchKey("Enter")
		}
	case "ctrl+f":
		m.driver.HandleSearchClick()
	case "ctrl+s":
		if m.doc.Visible(page.ControlUpdate) {
			m.err = m.driver.SubmitUpdate()
		} else {
			m.err = m.driver.HandleSubmit()
		}
	case "ctrl+e":
		if row, ok := m.selectedRow(); ok {
			if target, ok := row.EditTarget(); ok {
				m.driver.HandleClick(target)
			}
		}
	case "ctrl+d":
		if row, ok := m.selectedRow(); ok {
			m.err = m.driver.Delete(row)
		}
	case "ctrl+l":
		m.driver.HandleClear()
	case "ctrl+a":
		m.driver.ShowAll()
	default:
		return m.updateInput(msg)
	}
	m.pull()
	return m, nil
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.doc.SetValue(inputIDs[m.focus], m.inputs[m.focus].Value())
	return m, cmd
}

func (m Model) setFocus(i int) Model {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
	return m
}

// pull copies the document into the inputs and the record table.
func (m *Model) pull() {
	for i, id := range inputIDs {
		if v := m.doc.Value(id); v != m.inputs[i].Value() {
			m.inputs[i].SetValue(v)
		}
	}
	table, err := m.doc.Table()
	if err != nil {
		m.err = err
		return
	}
	m.table = table
	if m.selected >= len(table.Rows) {
		m.selected = len(table.Rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) selectedRow() (page.Row, bool) {
	if m.selected < 0 || m.selected >= len(m.table.Rows) {
		return page.Row{}, false
	}
	return m.table.Rows[m.selected], true
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Attendance Tracker"))
	b.WriteString("\n")

	if flash := m.doc.Flash(); flash != nil {
		b.WriteString(flashStyle(flash.Category).Render(flash.Message))
		b.WriteString("\n\n")
	}

	b.WriteString(boxStyle.Render(m.formView()))
	b.WriteString("\n\n")
	b.WriteString(m.tableView())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("tab focus • enter search • ctrl+s save • ctrl+e edit • ctrl+d delete • ctrl+l clear • ctrl+a show all • ctrl+c quit"))
	return b.String()
}

func (m Model) formView() string {
	var lines []string
	if id := m.doc.Value(page.FieldRecordID); id != "" {
		lines = append(lines, modeStyle.Render(fmt.Sprintf("Editing record #%s", id)))
	} else {
		lines = append(lines, modeStyle.Render("New record"))
	}
	for i := range m.inputs {
		if i == focusSearch {
			lines = append(lines, "")
		}
		label := labelStyle
		if i == m.focus {
			label = focusedLabel
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label.Render(inputLabels[i]), m.inputs[i].View()))
	}

	var buttons []string
	if m.doc.Visible(page.ControlSubmit) {
		buttons = append(buttons, "[ctrl+s] Add Record")
	}
	if m.doc.Visible(page.ControlUpdate) {
		buttons = append(buttons, "[ctrl+s] Update Record")
	}
	lines = append(lines, "", strings.Join(buttons, "  "))
	return strings.Join(lines, "\n")
}

func (m Model) tableView() string {
	if len(m.table.Rows) == 0 {
		empty := m.table.Empty
		if empty == "" {
			empty = "No records found."
		}
		return mutedStyle.Render(empty)
	}

	widths := columnWidths(m.table)
	var b strings.Builder
	b.WriteString("  " + headerStyle.Render(formatRow(m.table.Headers, widths)))
	b.WriteString("\n")
	for i, row := range m.table.Rows {
		line := formatRow(row.Cells, widths)
		if i == m.selected {
			b.WriteString("> " + selectedStyle.Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// columnWidths sizes the data columns. Headers past the last data column
// belong to the actions cell, which is bound to keys instead.
func columnWidths(t page.Table) []int {
	n := 0
	for _, row := range t.Rows {
		if len(row.Cells) > n {
			n = len(row.Cells)
		}
	}
	widths := make([]int, n)
	measure := func(cells []string) {
		for i, c := range cells {
			if i >= n {
				break
			}
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row.Cells)
	}
	return widths
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, 0, len(widths))
	for i, w := range widths {
		var c string
		if i < len(cells) {
			c = cells[i]
		}
		parts = append(parts, c+strings.Repeat(" ", w-lipgloss.Width(c)))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
