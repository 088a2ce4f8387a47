package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turbolytics/arquivo/internal/arquivo"
)

type DetailModel struct {
	file *arquivo.File
}

func NewDetailModel(f *arquivo.File) DetailModel {
	return DetailModel{file: f}
}

func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "q", "enter":
			return m, ChangeScreen(ResultsScreen)
		}
	}
	return m, nil
}

func (m DetailModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Detalhe do arquivo"))
	b.WriteString("\n")

	if m.file == nil {
		b.WriteString(mutedStyle.Render("detail unavailable"))
		b.WriteString(helpStyle.Render("esc: back"))
		return b.String()
	}

	f := m.file
	fields := []struct {
		label string
		value string
	}{
		{"ID", f.ID},
		{"Arquivo", f.FileName},
		{"Total de registros", fmt.Sprint(f.TotalRecords)},
		{"Aceitos", fmt.Sprint(f.Accepted)},
		{"Sem documento", fmt.Sprint(f.MissingDocuments)},
		{"Erros com código", fmt.Sprint(f.CodedErrors)},
		{"Erros genéricos", fmt.Sprint(f.GenericErrors)},
		{"Enviado em", f.UploadedAt},
		{"Enviado por", f.UploadedBy},
	}

	var body strings.Builder
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		body.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", field.label)))
		body.WriteString(field.value)
		body.WriteString("\n")
	}
	b.WriteString(formStyle.Render(strings.TrimRight(body.String(), "\n")))
	b.WriteString(helpStyle.Render("esc: back"))
	return b.String()
}
