package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type flowDoneMsg struct {
	err error
}

// flowSpinnerModel shows the controller status line next to a spinner until
// the flow completes. The label is refreshed on every tick.
type flowSpinnerModel struct {
	spinner spinner.Model
	status  func() string
	run     tea.Cmd
	err     error
	done    bool
}

func newFlowSpinnerModel(status func() string, run tea.Cmd) flowSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return flowSpinnerModel{
		spinner: s,
		status:  status,
		run:     run,
	}
}

func (m flowSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m flowSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case flowDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m flowSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.status())
}

func runFlowSpinner(ctx context.Context, output io.Writer, status func() string, run func(context.Context) error) error {
	runCmd := func() tea.Msg {
		return flowDoneMsg{err: run(ctx)}
	}

	p := tea.NewProgram(
		newFlowSpinnerModel(status, runCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(flowSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
