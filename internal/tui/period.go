package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/turbolytics/arquivo/internal/period"
)

const (
	startInput = iota
	endInput
)

// PeriodModel is the search form. A period is only submitted once both
// dates parse and start is not after end.
type PeriodModel struct {
	inputs     []textinput.Model
	focusIndex int
	fieldErr   *period.ValidationError
}

func NewPeriodModel() PeriodModel {
	inputs := make([]textinput.Model, 2)

	inputs[startInput] = textinput.New()
	inputs[startInput].Placeholder = "2024-01-01"
	inputs[startInput].CharLimit = 10
	inputs[startInput].Width = 12
	inputs[startInput].Focus()

	inputs[endInput] = textinput.New()
	inputs[endInput].Placeholder = "2024-01-31"
	inputs[endInput].CharLimit = 10
	inputs[endInput].Width = 12

	return PeriodModel{inputs: inputs}
}

func (m PeriodModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *PeriodModel) SetValues(start, end string) {
	m.inputs[startInput].SetValue(start)
	m.inputs[endInput].SetValue(end)
}

func (m PeriodModel) FieldError() *period.ValidationError {
	return m.fieldErr
}

func (m PeriodModel) Update(msg tea.Msg) (PeriodModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return m, tea.Quit

		case "ctrl+u":
			return m, ChangeScreen(UploadScreen)

		case "tab", "shift+tab", "up", "down":
			if msg.String() == "shift+tab" || msg.String() == "up" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}
			m.focusIndex = (m.focusIndex + len(m.inputs)) % len(m.inputs)
			return m, m.updateFocus()

		case "enter":
			if m.focusIndex == startInput {
				m.focusIndex = endInput
				return m, m.updateFocus()
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m PeriodModel) submit() (PeriodModel, tea.Cmd) {
	p, err := period.New(
		strings.TrimSpace(m.inputs[startInput].Value()),
		strings.TrimSpace(m.inputs[endInput].Value()),
	)
	if err != nil {
		var verr *period.ValidationError
		if errors.As(err, &verr) {
			m.fieldErr = verr
			return m, nil
		}
		return m, ShowError(err)
	}
	m.fieldErr = nil
	return m, func() tea.Msg {
		return SearchMsg{Period: p, Page: 1}
	}
}

func (m *PeriodModel) updateFocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focusIndex {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m PeriodModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Arquivos enviados"))
	b.WriteString("\n")

	labels := []string{"Data inicial", "Data final"}
	fields := []string{period.ParamStart, period.ParamEnd}
	var form strings.Builder
	for i, input := range m.inputs {
		form.WriteString(labelStyle.Render(labels[i] + ":"))
		form.WriteString("\n")
		form.WriteString(input.View())
		form.WriteString("\n")
		if m.fieldErr != nil && m.fieldErr.Field == fields[i] {
			form.WriteString(errorStyle.Render(m.fieldErr.Message))
			form.WriteString("\n")
		}
		if i < len(m.inputs)-1 {
			form.WriteString("\n")
		}
	}
	b.WriteString(formStyle.Render(form.String()))

	b.WriteString(helpStyle.Render("tab: next field • enter: search • ctrl+u: upload • esc: quit"))
	return b.String()
}
