package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turbolytics/arquivo/internal/arquivo"
	"github.com/turbolytics/arquivo/internal/client"
	"github.com/turbolytics/arquivo/internal/normalize"
	"github.com/turbolytics/arquivo/internal/period"
	"github.com/turbolytics/arquivo/internal/session"
)

// Backend is what the screens need from the API client.
type Backend interface {
	List(ctx context.Context, req client.ListRequest) (*normalize.Page, error)
	Get(ctx context.Context, id string) (*arquivo.File, error)
	Upload(ctx context.Context, req client.UploadRequest) (string, error)
}

type Screen int

const (
	PeriodScreen Screen = iota
	ResultsScreen
	DetailScreen
	UploadScreen
)

type Model struct {
	ctx      context.Context
	backend  Backend
	pageSize int

	currentScreen Screen
	periodModel   PeriodModel
	resultsModel  ResultsModel
	detailModel   DetailModel
	uploadModel   UploadModel

	loading  bool
	status   string
	err      error
	quitting bool
	width    int
	height   int
}

func NewModel(ctx context.Context, backend Backend, pageSize int) Model {
	if pageSize <= 0 {
		pageSize = 20
	}
	return Model{
		ctx:           ctx,
		backend:       backend,
		pageSize:      pageSize,
		currentScreen: PeriodScreen,
		periodModel:   NewPeriodModel(),
		uploadModel:   NewUploadModel(),
	}
}

func (m Model) Screen() Screen {
	return m.currentScreen
}

func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return m.periodModel.Init()
}

// SearchMsg asks for a page of the period.
type SearchMsg struct {
	Period period.Period
	Page   int
}

type PageLoadedMsg struct {
	Period period.Period
	Page   *normalize.Page
}

type OpenDetailMsg struct {
	ID string
}

type FileLoadedMsg struct {
	File *arquivo.File
}

type UploadMsg struct {
	Request client.UploadRequest
	Close   func() error
}

type UploadedMsg struct {
	ID string
}

type ScreenChangeMsg struct {
	Screen Screen
}

type ErrorMsg struct {
	Err error
}

type StatusMsg struct {
	Text string
}

func ChangeScreen(screen Screen) tea.Cmd {
	return func() tea.Msg {
		return ScreenChangeMsg{Screen: screen}
	}
}

func ShowError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

func ShowStatus(text string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text}
	}
}

func (m Model) fetchPage(p period.Period, n int) tea.Cmd {
	return func() tea.Msg {
		page, err := m.backend.List(m.ctx, client.ListRequest{
			Period:   p,
			Page:     n,
			PageSize: m.pageSize,
		})
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return PageLoadedMsg{Period: p, Page: page}
	}
}

func (m Model) fetchFile(id string) tea.Cmd {
	return func() tea.Msg {
		f, err := m.backend.Get(m.ctx, id)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return FileLoadedMsg{File: f}
	}
}

func (m Model) upload(msg UploadMsg) tea.Cmd {
	return func() tea.Msg {
		if msg.Close != nil {
			defer msg.Close()
		}
		id, err := m.backend.Upload(m.ctx, msg.Request)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return UploadedMsg{ID: id}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.loading && msg.String() != "ctrl+c" {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		m.err = nil
		m.status = ""

	case SearchMsg:
		m.loading = true
		return m, m.fetchPage(msg.Period, msg.Page)

	case PageLoadedMsg:
		m.loading = false
		m.resultsModel = NewResultsModel(msg.Period, msg.Page)
		m.currentScreen = ResultsScreen
		return m, nil

	case OpenDetailMsg:
		m.loading = true
		return m, m.fetchFile(msg.ID)

	case FileLoadedMsg:
		m.loading = false
		m.detailModel = NewDetailModel(msg.File)
		m.currentScreen = DetailScreen
		return m, nil

	case UploadMsg:
		m.loading = true
		return m, m.upload(msg)

	case UploadedMsg:
		m.loading = false
		m.uploadModel = NewUploadModel()
		m.currentScreen = PeriodScreen
		if msg.ID == "" {
			m.status = "upload accepted, no identifier returned"
		} else {
			m.status = fmt.Sprintf("upload accepted with id %s", msg.ID)
		}
		return m, nil

	case ScreenChangeMsg:
		if msg.Screen == UploadScreen {
			if sess := session.FromContext(m.ctx); sess != nil && !sess.CanUpload {
				m.err = client.ErrUploadNotPermitted
				return m, nil
			}
		}
		m.currentScreen = msg.Screen
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case StatusMsg:
		m.status = msg.Text
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentScreen {
	case PeriodScreen:
		m.periodModel, cmd = m.periodModel.Update(msg)
	case ResultsScreen:
		m.resultsModel, cmd = m.resultsModel.Update(msg)
	case DetailScreen:
		m.detailModel, cmd = m.detailModel.Update(msg)
	case UploadScreen:
		m.uploadModel, cmd = m.uploadModel.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.currentScreen {
	case PeriodScreen:
		content = m.periodModel.View()
	case ResultsScreen:
		content = m.resultsModel.View()
	case DetailScreen:
		content = m.detailModel.View()
	case UploadScreen:
		content = m.uploadModel.View()
	}

	if m.loading {
		content += "\n" + mutedStyle.Render("loading...")
	}
	if m.status != "" {
		content += "\n" + successStyle.Render(m.status)
	}
	if m.err != nil {
		content += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return content
}
