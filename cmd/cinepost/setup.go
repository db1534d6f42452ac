package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Nomadcxx/cinepost/internal/config"
)

var (
	setupPrimary = lipgloss.Color("#AA5CC3") // Purple
	setupAccent  = lipgloss.Color("#00A4DC") // Cyan
	setupFg      = lipgloss.Color("#FFFFFF") // White text
	setupError   = lipgloss.Color("#FF5555") // Red for errors

	setupTitleStyle = lipgloss.NewStyle().Foreground(setupPrimary).Bold(true)
	setupLabelStyle = lipgloss.NewStyle().Foreground(setupAccent)
	setupHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	setupErrStyle   = lipgloss.NewStyle().Foreground(setupError)
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive configuration wizard",
		Long: `Walk through the required settings (bot token, channel id, TMDB API
key) and write the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			final, err := tea.NewProgram(newSetupModel()).Run()
			if err != nil {
				return fmt.Errorf("running setup: %w", err)
			}
			m := final.(setupModel)
			if !m.saved {
				fmt.Println("Setup aborted, nothing written.")
				return nil
			}
			path, _ := config.ConfigPath()
			fmt.Printf("✓ Wrote config file: %s\n", path)
			fmt.Println("Run 'cinepost run' to start the bot.")
			return nil
		},
	}
}

// Input order in the wizard.
const (
	inputToken = iota
	inputChannelID
	inputAPIKey
	inputAllowedUsers
	inputCount
)

type setupModel struct {
	inputs  []textinput.Model
	focused int
	errMsg  string
	saved   bool
	done    bool
}

func newSetupModel() setupModel {
	cfg := config.DefaultConfig()
	if existing, err := config.Load(); err == nil {
		cfg = existing
	}

	inputs := make([]textinput.Model, inputCount)

	inputs[inputToken] = textinput.New()
	inputs[inputToken].Placeholder = "123456:ABC-DEF..."
	inputs[inputToken].Width = 50
	inputs[inputToken].CharLimit = 100
	inputs[inputToken].SetValue(cfg.Telegram.Token)
	inputs[inputToken].EchoMode = textinput.EchoPassword
	inputs[inputToken].EchoCharacter = '•'

	inputs[inputChannelID] = textinput.New()
	inputs[inputChannelID].Placeholder = "-1001234567890"
	inputs[inputChannelID].Width = 30
	inputs[inputChannelID].CharLimit = 20
	if cfg.Telegram.ChannelID != 0 {
		inputs[inputChannelID].SetValue(strconv.FormatInt(cfg.Telegram.ChannelID, 10))
	}

	inputs[inputAPIKey] = textinput.New()
	inputs[inputAPIKey].Placeholder = "TMDB API key"
	inputs[inputAPIKey].Width = 50
	inputs[inputAPIKey].CharLimit = 100
	inputs[inputAPIKey].SetValue(cfg.TMDB.APIKey)
	inputs[inputAPIKey].EchoMode = textinput.EchoPassword
	inputs[inputAPIKey].EchoCharacter = '•'

	inputs[inputAllowedUsers] = textinput.New()
	inputs[inputAllowedUsers].Placeholder = "12345, 67890 (empty allows everyone)"
	inputs[inputAllowedUsers].Width = 50
	inputs[inputAllowedUsers].CharLimit = 200
	inputs[inputAllowedUsers].SetValue(formatUserIDs(cfg.Telegram.AllowedUserIDs))

	for i := range inputs {
		inputs[i].PromptStyle = setupLabelStyle
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(setupFg)
	}
	inputs[0].Focus()

	return setupModel{inputs: inputs}
}

func (m setupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.focused == len(m.inputs)-1 {
				if err := m.save(); err != nil {
					m.errMsg = err.Error()
					return m, nil
				}
				m.saved = true
				m.done = true
				return m, tea.Quit
			}
			m.focused++
			return m.updateFocus()
		case tea.KeyTab, tea.KeyDown:
			m.focused = (m.focused + 1) % len(m.inputs)
			return m.updateFocus()
		case tea.KeyShiftTab, tea.KeyUp:
			m.focused = (m.focused - 1 + len(m.inputs)) % len(m.inputs)
			return m.updateFocus()
		}
	}

	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m setupModel) updateFocus() (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		if i == m.focused {
			cmds[i] = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	m.errMsg = ""
	return m, tea.Batch(cmds...)
}

func (m *setupModel) save() error {
	cfg := config.DefaultConfig()
	if existing, err := config.Load(); err == nil {
		cfg = existing
	}

	cfg.Telegram.Token = strings.TrimSpace(m.inputs[inputToken].Value())
	cfg.TMDB.APIKey = strings.TrimSpace(m.inputs[inputAPIKey].Value())

	channelStr := strings.TrimSpace(m.inputs[inputChannelID].Value())
	if channelStr != "" {
		channelID, err := strconv.ParseInt(channelStr, 10, 64)
		if err != nil {
			return fmt.Errorf("channel id must be a number, got %q", channelStr)
		}
		cfg.Telegram.ChannelID = channelID
	}

	users, err := parseUserIDs(m.inputs[inputAllowedUsers].Value())
	if err != nil {
		return err
	}
	cfg.Telegram.AllowedUserIDs = users

	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.Save()
}

func (m setupModel) View() string {
	if m.done {
		return ""
	}

	labels := []string{
		"Telegram bot token (from @BotFather)",
		"Channel ID (bot must be an admin there)",
		"TMDB API key (from themoviedb.org)",
		"Allowed user IDs (comma separated)",
	}

	var b strings.Builder
	b.WriteString(setupTitleStyle.Render("🎬 Cinepost Setup") + "\n\n")
	for i, input := range m.inputs {
		b.WriteString(setupLabelStyle.Render(labels[i]) + "\n")
		b.WriteString(input.View() + "\n\n")
	}
	if m.errMsg != "" {
		b.WriteString(setupErrStyle.Render("✗ "+m.errMsg) + "\n\n")
	}
	b.WriteString(setupHelpStyle.Render("tab/↑↓ move • enter on the last field saves • esc aborts"))
	return b.String()
}

func parseUserIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int64{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("user id %q is not a number", p)
		}
		out = append(out, id)
	}
	return out, nil
}

func formatUserIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
