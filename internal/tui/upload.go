package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/turbolytics/arquivo/internal/client"
)

const (
	pathInput = iota
	descriptionInput
)

// DescriptionField is the optional free text sent with an upload.
const DescriptionField = "descricao"

type UploadModel struct {
	inputs     []textinput.Model
	focusIndex int
	localErr   string
}

func NewUploadModel() UploadModel {
	inputs := make([]textinput.Model, 2)

	inputs[pathInput] = textinput.New()
	inputs[pathInput].Placeholder = "/path/to/file.txt"
	inputs[pathInput].Width = 50
	inputs[pathInput].Focus()

	inputs[descriptionInput] = textinput.New()
	inputs[descriptionInput].Placeholder = "optional description"
	inputs[descriptionInput].CharLimit = 200
	inputs[descriptionInput].Width = 50

	return UploadModel{inputs: inputs}
}

func (m *UploadModel) SetValues(path, description string) {
	m.inputs[pathInput].SetValue(path)
	m.inputs[descriptionInput].SetValue(description)
}

func (m UploadModel) LocalError() string {
	return m.localErr
}

func (m UploadModel) Update(msg tea.Msg) (UploadModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.localErr = ""
			return m, ChangeScreen(PeriodScreen)

		case "tab", "shift+tab", "up", "down":
			m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
			return m, m.updateFocus()

		case "enter":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

// submit opens the file locally so a missing path never reaches the backend.
func (m UploadModel) submit() (UploadModel, tea.Cmd) {
	path := strings.TrimSpace(m.inputs[pathInput].Value())
	if path == "" {
		m.localErr = "select a file to upload"
		return m, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		m.localErr = fmt.Sprintf("cannot read %s: %v", path, err)
		return m, nil
	}
	if info.IsDir() {
		m.localErr = fmt.Sprintf("%s is a directory", path)
		return m, nil
	}
	f, err := os.Open(path)
	if err != nil {
		m.localErr = fmt.Sprintf("cannot open %s: %v", path, err)
		return m, nil
	}
	m.localErr = ""

	req := client.UploadRequest{
		FileName: filepath.Base(path),
		Content:  f,
		Fields: map[string]string{
			DescriptionField: strings.TrimSpace(m.inputs[descriptionInput].Value()),
		},
	}
	return m, func() tea.Msg {
		return UploadMsg{Request: req, Close: f.Close}
	}
}

func (m *UploadModel) updateFocus() tea.Cmd {
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

func (m UploadModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Enviar arquivo"))
	b.WriteString("\n")

	var form strings.Builder
	form.WriteString(labelStyle.Render("Arquivo:"))
	form.WriteString("\n")
	form.WriteString(m.inputs[pathInput].View())
	form.WriteString("\n\n")
	form.WriteString(labelStyle.Render("Descrição:"))
	form.WriteString("\n")
	form.WriteString(m.inputs[descriptionInput].View())
	if m.localErr != "" {
		form.WriteString("\n")
		form.WriteString(errorStyle.Render(m.localErr))
	}
	b.WriteString(formStyle.Render(form.String()))
	b.WriteString(helpStyle.Render("tab: next field • enter: upload • esc: back"))
	return b.String()
}
