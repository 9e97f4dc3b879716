package cli

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
)

// progressState is shared between the worker goroutine and the TUI.
type progressState struct {
	mu    sync.RWMutex
	stage string
	done  bool
	err   error
}

func (s *progressState) setStage(stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = stage
}

func (s *progressState) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	s.done = true
}

func (s *progressState) get() (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage, s.done, s.err
}

type progressTickMsg time.Time

type progressModel struct {
	spinner   spinner.Model
	title     string
	state     *progressState
	cancelled bool
}

func newProgressModel(title string, state *progressState) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return progressModel{
		spinner: s,
		title:   title,
		state:   state,
	}
}

func progressTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, progressTickCmd())
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelled = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressTickMsg:
		if _, done, _ := m.state.get(); done {
			return m, tea.Quit
		}
		return m, progressTickCmd()
	}

	return m, nil
}

func (m progressModel) View() string {
	stage, done, err := m.state.get()

	if err != nil {
		return fmt.Sprintf("  %s %s: %v\n", errStyle.Render("✗"), m.title, err)
	}
	if done {
		return fmt.Sprintf("  %s %s\n", doneStyle.Render("✓"), m.title)
	}
	if m.cancelled {
		return fmt.Sprintf("  %s %s\n", hintStyle.Render("-"), "cancelled")
	}
	return fmt.Sprintf("  %s %s %s\n",
		m.spinner.View(),
		infoStyle.Render(m.title),
		hintStyle.Render(stage),
	)
}

// errCancelled is returned when the user quits the spinner.
var errCancelled = fmt.Errorf("cancelled")

// runWithProgress runs fn while a spinner shows its latest stage. Without a
// terminal, or in verbose mode, stages are printed as plain lines instead.
// cancel is called when the user quits the spinner.
func runWithProgress(title string, cancel func(), fn func(stage func(string)) error) error {
	if verbose || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("%s\n", title)
		return fn(func(s string) { fmt.Printf("  └─ %s\n", s) })
	}

	state := &progressState{}
	go func() {
		state.finish(fn(state.setStage))
	}()

	final, err := tea.NewProgram(newProgressModel(title, state)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(progressModel); ok && m.cancelled {
		cancel()
		return errCancelled
	}

	_, _, runErr := state.get()
	return runErr
}
