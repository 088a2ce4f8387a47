package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turbolytics/arquivo/internal/arquivo"
	"github.com/turbolytics/arquivo/internal/normalize"
	"github.com/turbolytics/arquivo/internal/period"
)

// ResultsModel lists one page of files.
type ResultsModel struct {
	period period.Period
	page   normalize.Page
	files  []arquivo.File
	cursor int
}

func NewResultsModel(p period.Period, page *normalize.Page) ResultsModel {
	m := ResultsModel{period: p}
	if page != nil {
		m.page = *page
		m.files = arquivo.FromPage(*page)
	}
	return m
}

func (m ResultsModel) Files() []arquivo.File {
	return m.files
}

func (m ResultsModel) Cursor() int {
	return m.cursor
}

func (m ResultsModel) Update(msg tea.Msg) (ResultsModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}
	case "n", "right":
		if m.page.HasNext() {
			return m, m.goTo(m.page.Page + 1)
		}
	case "p", "left":
		if m.page.HasPrevious() {
			return m, m.goTo(m.page.Page - 1)
		}
	case "enter":
		if len(m.files) == 0 {
			return m, nil
		}
		f := m.files[m.cursor]
		if !f.HasID() {
			return m, ShowStatus("detail unavailable: this file has no identifier")
		}
		return m, func() tea.Msg {
			return OpenDetailMsg{ID: f.ID}
		}
	case "u":
		return m, ChangeScreen(UploadScreen)
	case "esc", "q":
		return m, ChangeScreen(PeriodScreen)
	}
	return m, nil
}

func (m ResultsModel) goTo(n int) tea.Cmd {
	p := m.period
	return func() tea.Msg {
		return SearchMsg{Period: p, Page: n}
	}
}

func (m ResultsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Arquivos %s a %s", m.period.Start, m.period.End)))
	b.WriteString("\n")

	if len(m.files) == 0 {
		b.WriteString(mutedStyle.Render("No files uploaded in this period."))
		b.WriteString("\n")
	} else {
		b.WriteString(headerStyle.Render(row("ID", "FILE", "TOTAL", "ACCEPTED", "NO DOC", "CODED", "GENERIC")))
		b.WriteString("\n")
		for i, f := range m.files {
			line := row(
				f.ID,
				f.FileName,
				fmt.Sprint(f.TotalRecords),
				fmt.Sprint(f.Accepted),
				fmt.Sprint(f.MissingDocuments),
				fmt.Sprint(f.CodedErrors),
				fmt.Sprint(f.GenericErrors),
			)
			switch {
			case i == m.cursor:
				line = selectedRowStyle.Render(line)
			case !f.HasID():
				line = mutedStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(fmt.Sprintf("\npage %d of %d • %d files", m.page.Page, m.page.TotalPages(), m.page.Total))
	b.WriteString(helpStyle.Render("↑/↓: select • enter: detail • n/p: next/previous page • u: upload • esc: back"))
	return b.String()
}

func row(id, name, total, accepted, missing, coded, generic string) string {
	return fmt.Sprintf("%-8s %-32s %8s %8s %8s %8s %8s",
		truncate(id, 8), truncate(name, 32), total, accepted, missing, coded, generic)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
