package cli

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"

	"github.com/GAYIVORE/studybuddy-cli/internal/models"
	"github.com/GAYIVORE/studybuddy-cli/internal/upload"
)

// transitionMsg carries a per-file state change from the pipeline.
type transitionMsg models.UploadItem

// uploadsDoneMsg carries the final item list once the pipeline returns.
type uploadsDoneMsg []models.UploadItem

// uploadModel renders live progress while the pipeline works through files.
type uploadModel struct {
	paths       []string
	progress    progress.Model
	theme       Theme
	transitions chan models.UploadItem
	results     chan []models.UploadItem

	current  string
	finished int
	items    []models.UploadItem
	done     bool
	quitting bool
}

func newUploadModel(paths []string, transitions chan models.UploadItem, results chan []models.UploadItem) uploadModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return uploadModel{
		paths:       paths,
		progress:    prog,
		theme:       defaultTheme,
		transitions: transitions,
		results:     results,
	}
}

func (m uploadModel) Init() tea.Cmd {
	return tea.Batch(
		m.progress.Init(),
		m.waitForTransition(),
		m.waitForResults(),
	)
}

func (m uploadModel) waitForTransition() tea.Cmd {
	return func() tea.Msg {
		return transitionMsg(<-m.transitions)
	}
}

func (m uploadModel) waitForResults() tea.Cmd {
	return func() tea.Msg {
		return uploadsDoneMsg(<-m.results)
	}
}

func (m uploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case transitionMsg:
		item := models.UploadItem(msg)
		switch item.Status {
		case models.UploadUploading:
			m.current = item.Name
		case models.UploadSuccess, models.UploadError:
			m.finished++
		}
		return m, m.waitForTransition()

	case uploadsDoneMsg:
		m.items = []models.UploadItem(msg)
		m.done = true
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m uploadModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m uploadModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	pct := float64(m.finished) / float64(len(m.paths))
	status := m.theme.statusStyle().Render("[uploading]")
	counts := fmt.Sprintf("%d/%d files", m.finished, len(m.paths))
	line := fmt.Sprintf("%s %s %s\n", status, m.progress.ViewAs(pct), counts)
	if m.current != "" {
		line += m.theme.hintStyle().Render("  "+m.current) + "\n"
	}
	return line
}

func (m uploadModel) finalView() string {
	var output string
	for _, item := range m.items {
		switch item.Status {
		case models.UploadSuccess:
			output += m.theme.successStyle().Render(fmt.Sprintf("✓ %s", item.Name)) + "\n"
		case models.UploadError:
			output += m.theme.errorStyle().Render(fmt.Sprintf("✗ %s: %s", item.Name, item.Err)) + "\n"
		}
	}
	return output
}

// runUploadProgress drives the pipeline under an interactive progress
// display and returns the processed items.
func runUploadProgress(ctx context.Context, pipeline *upload.Pipeline, paths []string, description string) ([]models.UploadItem, error) {
	transitions := make(chan models.UploadItem, 16)
	results := make(chan []models.UploadItem, 1)
	pipeline.OnTransition = func(item models.UploadItem) {
		transitions <- item
	}

	go func() {
		results <- pipeline.Process(ctx, paths, description)
	}()

	model := newUploadModel(paths, transitions, results)
	p := tea.NewProgram(model)
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("upload UI error: %w", err)
	}

	if m, ok := finalModel.(uploadModel); ok {
		if m.quitting {
			return nil, fmt.Errorf("upload cancelled")
		}
		return m.items, nil
	}
	return nil, nil
}
