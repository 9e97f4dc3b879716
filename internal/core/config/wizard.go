package config

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const asciiArt = `
 ██╗   ██╗███████╗██╗   ██╗███╗   ███╗
 ██║   ██║██╔════╝██║   ██║████╗ ████║
 ██║   ██║███████╗██║   ██║██╔████╔██║
 ╚██╗ ██╔╝╚════██║██║   ██║██║╚██╔╝██║
  ╚████╔╝ ███████║╚██████╔╝██║ ╚═╝ ██║
   ╚═══╝  ╚══════╝ ╚═════╝ ╚═╝     ╚═╝
`

var (
	logoStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	stepStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	unselectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	inputStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	inputCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(14)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	containerStyle   = lipgloss.NewStyle().Padding(2, 4)
)

// Wizard steps.
const (
	stepProvider = iota
	stepOutputDir
	stepFormat
	stepChunking
	stepConfirm
	stepCount
)

type option struct{ label, value string }

type model struct {
	currentStep int
	cursor      int
	config      *Config
	confirmed   bool
	cancelled   bool
	inputBuffer string
	width       int
	height      int
}

func initialModel(cfg *Config) model {
	m := model{config: cfg}
	m.setCursorFromConfig()
	return m
}

func (m *model) getStepTitle() string {
	switch m.currentStep {
	case stepProvider:
		return "LLM provider"
	case stepOutputDir:
		return "Output directory"
	case stepFormat:
		return "Summary format"
	case stepChunking:
		return "Chunking strategy"
	case stepConfirm:
		return "Confirm"
	}
	return ""
}

func (m *model) getStepDescription() string {
	switch m.currentStep {
	case stepProvider:
		return "Which service writes your summaries"
	case stepOutputDir:
		return "Summaries are saved here, one folder per channel"
	case stepFormat:
		return "Default layout of generated summaries"
	case stepChunking:
		return "How long transcripts are split before summarizing"
	case stepConfirm:
		return "Save these settings?"
	}
	return ""
}

func (m *model) getOptions() []option {
	switch m.currentStep {
	case stepProvider:
		return []option{
			{"Anthropic Claude (recommended)", ProviderAnthropic},
			{"OpenAI", ProviderOpenAI},
			{"Alibaba Qwen", ProviderQwen},
		}
	case stepFormat:
		return []option{
			{"Detailed (recommended)", "detailed"},
			{"Concise", "concise"},
			{"Academic", "academic"},
			{"Bullet points", "bullet_points"},
		}
	case stepChunking:
		return []option{
			{"Auto, based on video length (recommended)", "auto"},
			{"None, whole transcript in one request", "none"},
			{"Recursive, by paragraphs and lines", "recursive"},
			{"Semantic, by topic shifts (needs embeddings)", "semantic"},
			{"Timestamp, 5 minute windows", "timestamp"},
		}
	case stepConfirm:
		return []option{
			{"Yes, save", "yes"},
			{"No, cancel", "no"},
		}
	}
	return nil
}

func (m *model) isInputStep() bool {
	return m.currentStep == stepOutputDir
}

func (m *model) setCursorFromConfig() {
	m.cursor = 0
	if m.isInputStep() {
		m.inputBuffer = m.config.OutputDir
		if m.inputBuffer == "" {
			m.inputBuffer = DefaultOutputDir
		}
		return
	}

	var currentValue string
	switch m.currentStep {
	case stepProvider:
		currentValue = m.config.LLM.Provider
	case stepFormat:
		currentValue = m.config.Format
	case stepChunking:
		currentValue = m.config.Chunking.Strategy
	}

	for i, opt := range m.getOptions() {
		if opt.value == currentValue {
			m.cursor = i
			break
		}
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "left":
			if m.currentStep > 0 {
				m.saveCurrentValue()
				m.currentStep--
				m.setCursorFromConfig()
			}
			return m, nil

		case "right", "enter":
			m.saveCurrentValue()

			if m.currentStep == stepConfirm {
				if m.cursor == 0 {
					m.confirmed = true
				} else {
					m.cancelled = true
				}
				return m, tea.Quit
			}

			m.currentStep++
			m.setCursorFromConfig()
			return m, nil

		case "up", "k":
			if !m.isInputStep() {
				options := m.getOptions()
				if m.cursor > 0 {
					m.cursor--
				} else {
					m.cursor = len(options) - 1
				}
			}
			return m, nil

		case "down", "j":
			if !m.isInputStep() {
				options := m.getOptions()
				if m.cursor < len(options)-1 {
					m.cursor++
				} else {
					m.cursor = 0
				}
			}
			return m, nil

		case "backspace":
			if m.isInputStep() && len(m.inputBuffer) > 0 {
				runes := []rune(m.inputBuffer)
				m.inputBuffer = string(runes[:len(runes)-1])
			}
			return m, nil

		default:
			if m.isInputStep() && msg.Type == tea.KeyRunes {
				m.inputBuffer += string(msg.Runes)
			}
			return m, nil
		}
	}

	return m, nil
}

func (m *model) saveCurrentValue() {
	if m.isInputStep() {
		m.config.OutputDir = strings.TrimSpace(m.inputBuffer)
		return
	}

	options := m.getOptions()
	if m.cursor >= len(options) {
		return
	}
	value := options[m.cursor].value
	switch m.currentStep {
	case stepProvider:
		if value != m.config.LLM.Provider {
			m.config.LLM.Provider = value
			m.config.LLM.Model = DefaultModel(value)
		}
	case stepFormat:
		m.config.Format = value
	case stepChunking:
		m.config.Chunking.Strategy = value
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(logoStyle.Render(asciiArt))
	b.WriteString("\n\n")

	b.WriteString(stepStyle.Render(fmt.Sprintf("Step %d of %d", m.currentStep+1, stepCount)))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render(m.getStepTitle()))
	b.WriteString("\n")
	b.WriteString(stepStyle.Render(m.getStepDescription()))
	b.WriteString("\n\n")

	if m.currentStep == stepConfirm {
		b.WriteString(m.renderReview())
		b.WriteString("\n")
	}

	if m.isInputStep() {
		b.WriteString(inputCursorStyle.Render("> "))
		b.WriteString(inputStyle.Render(m.inputBuffer))
		b.WriteString(inputCursorStyle.Render("█"))
		b.WriteString("\n")
	} else {
		for i, opt := range m.getOptions() {
			cursor := "  "
			style := unselectedStyle
			if i == m.cursor {
				cursor = cursorStyle.Render("> ")
				style = selectedStyle
			}
			b.WriteString(cursor)
			b.WriteString(style.Render(opt.label))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("← back • → next • ↑↓ select • enter confirm • esc quit"))

	content := containerStyle.Render(b.String())
	if m.width > 0 && m.height > 0 {
		content = lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, content)
	}
	return content
}

func (m model) renderReview() string {
	var b strings.Builder

	outputDir := m.config.OutputDir
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}

	lines := []struct {
		label string
		value string
	}{
		{"Provider", m.config.LLM.Provider},
		{"Model", m.config.LLM.Model},
		{"Output", outputDir},
		{"Format", m.config.Format},
		{"Chunking", m.config.Chunking.Strategy},
	}

	for _, line := range lines {
		b.WriteString(labelStyle.Render(line.label + ":"))
		b.WriteString(valueStyle.Render(line.value))
		b.WriteString("\n")
	}

	return b.String()
}

// RunInitWizard runs an interactive TUI wizard to configure vsum
func RunInitWizard() (*Config, error) {
	cfg := LoadOrDefault()

	p := tea.NewProgram(initialModel(cfg), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	result := finalModel.(model)
	if result.cancelled || !result.confirmed {
		return nil, fmt.Errorf("configuration cancelled")
	}

	if result.config.OutputDir == "" {
		result.config.OutputDir = DefaultOutputDir
	}
	result.config.fillDefaults()

	return result.config, nil
}
