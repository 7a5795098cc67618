package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tbruckner/warpviz/pkg/pipeline"
)

// Subject status values for the batch display.
const (
	statusPending = "pending"
	statusRunning = "running"
	statusDone    = "done"
	statusFailed  = "failed"
)

var (
	statusStyles = map[string]lipgloss.Style{
		statusPending: StyleDim,
		statusRunning: lipgloss.NewStyle().Foreground(colorCyan),
		statusDone:    StyleSuccess,
		statusFailed:  lipgloss.NewStyle().Foreground(colorRed),
	}
)

// =============================================================================
// Messages
// =============================================================================

type subjectStartedMsg struct{ id string }

type subjectFinishedMsg struct {
	id  string
	err error
}

type batchFinishedMsg struct{}

// =============================================================================
// batchModel - Batch Run Progress
// =============================================================================

// batchModel is the bubbletea model for batch pipeline progress.
type batchModel struct {
	ids      []string
	statuses map[string]string
	errs     map[string]error
	quitting bool
}

func newBatchModel(subjects []pipeline.Subject) batchModel {
	m := batchModel{
		statuses: make(map[string]string, len(subjects)),
		errs:     make(map[string]error),
	}
	for _, s := range subjects {
		m.ids = append(m.ids, s.ID)
		m.statuses[s.ID] = statusPending
	}
	return m
}

func (m batchModel) Init() tea.Cmd {
	return nil
}

func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	case subjectStartedMsg:
		m.statuses[msg.id] = statusRunning
	case subjectFinishedMsg:
		if msg.err != nil {
			m.statuses[msg.id] = statusFailed
			m.errs[msg.id] = msg.err
		} else {
			m.statuses[msg.id] = statusDone
		}
	case batchFinishedMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m batchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Batch Pipeline"))
	b.WriteString("\n\n")

	for _, id := range m.ids {
		status := m.statuses[id]
		style := statusStyles[status]
		line := fmt.Sprintf("  %-24s %s", id, style.Render(status))
		if err := m.errs[id]; err != nil {
			line += " " + StyleDim.Render(err.Error())
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	done := 0
	for _, s := range m.statuses {
		if s == statusDone || s == statusFailed {
			done++
		}
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", done, len(m.ids))))
	b.WriteString("\n")

	return b.String()
}

// =============================================================================
// batchProgress - Program Wrapper
// =============================================================================

// batchProgress drives the batch display from the pipeline loop.
type batchProgress struct {
	program  *tea.Program
	finished chan struct{}
}

func newBatchProgress(subjects []pipeline.Subject) *batchProgress {
	return &batchProgress{
		program:  tea.NewProgram(newBatchModel(subjects), tea.WithOutput(os.Stderr)),
		finished: make(chan struct{}),
	}
}

// Start runs the display in the background.
func (p *batchProgress) Start() {
	go func() {
		defer close(p.finished)
		_, _ = p.program.Run()
	}()
}

// SubjectStarted marks a subject as running.
func (p *batchProgress) SubjectStarted(id string) {
	p.program.Send(subjectStartedMsg{id: id})
}

// SubjectFinished marks a subject as done or failed.
func (p *batchProgress) SubjectFinished(id string, err error) {
	p.program.Send(subjectFinishedMsg{id: id, err: err})
}

// Finish stops the display and waits for it to shut down.
func (p *batchProgress) Finish() {
	p.program.Send(batchFinishedMsg{})
	<-p.finished
}
