package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// modelsLoadedMsg carries the listing back into the program.
type modelsLoadedMsg struct {
	models []string
}

// modelsSpinnerModel spins while the server is asked for its installed models.
type modelsSpinnerModel struct {
	spinner spinner.Model
	label   string
	load    tea.Cmd
	models  []string
	loaded  bool
}

func newModelsSpinnerModel(label string, load tea.Cmd) modelsSpinnerModel {
	return modelsSpinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		label: label,
		load:  load,
	}
}

func (m modelsSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

func (m modelsSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case modelsLoadedMsg:
		m.models = msg.models
		m.loaded = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.loaded {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m modelsSpinnerModel) View() string {
	if m.loaded {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// loadModelsWithSpinner shows label on output while list runs and returns its result.
func loadModelsWithSpinner(ctx context.Context, output io.Writer, label string, list func(context.Context) []string) ([]string, error) {
	load := func() tea.Msg {
		return modelsLoadedMsg{models: list(ctx)}
	}

	final, err := tea.NewProgram(
		newModelsSpinnerModel(label, load),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	).Run()
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	result, ok := final.(modelsSpinnerModel)
	if !ok {
		return nil, fmt.Errorf("unexpected final spinner model type %T", final)
	}

	return result.models, nil
}
