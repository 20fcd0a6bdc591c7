package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Base16 palette with warm earth tones
var (
	ColorBase00 = lipgloss.Color("#1a1816") // Dark background
	ColorBase01 = lipgloss.Color("#282420") // Lighter background
	ColorBase02 = lipgloss.Color("#36302a") // Selection background
	ColorBase03 = lipgloss.Color("#5c5044") // Comments, invisibles
	ColorBase05 = lipgloss.Color("#ab937b") // Default foreground
	ColorBase07 = lipgloss.Color("#f5d7b9") // Lightest foreground

	ColorRed    = lipgloss.Color("#d95f5f")
	ColorOrange = lipgloss.Color("#eb8755")
	ColorYellow = lipgloss.Color("#f5b761")
	ColorGreen  = lipgloss.Color("#93b56b")
	ColorCyan   = lipgloss.Color("#61afaf")
	ColorBlue   = lipgloss.Color("#6b93b5")
	ColorPurple = lipgloss.Color("#976bb5")

	ColorBorder  = ColorBase03
	ColorFocus   = ColorOrange
	ColorError   = ColorRed
	ColorInfo    = ColorCyan
	ColorMuted   = ColorBase03
	ColorWarning = ColorYellow
)

// Styles defines the Lipgloss styles for the TUI components
type Styles struct {
	// Message labels
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style

	// Message bodies
	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	SystemMessage    lipgloss.Style
	ErrorMessage     lipgloss.Style

	// Input
	InputBorder lipgloss.Style
	InputPrompt lipgloss.Style

	// Status line
	StatusBar   lipgloss.Style
	StatusModel lipgloss.Style
	StatusState lipgloss.Style
	StatusMuted lipgloss.Style
}

// DefaultStyles returns the default Lipgloss styles
func DefaultStyles() *Styles {
	return &Styles{
		UserLabel: lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true),

		AssistantLabel: lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true),

		SystemLabel: lipgloss.NewStyle().
			Foreground(ColorPurple).
			Bold(true),

		UserMessage: lipgloss.NewStyle().
			Foreground(ColorBase07),

		AssistantMessage: lipgloss.NewStyle(),

		SystemMessage: lipgloss.NewStyle().
			Foreground(ColorPurple).
			Italic(true),

		ErrorMessage: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		InputBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorFocus).
			Padding(0, 1),

		InputPrompt: lipgloss.NewStyle().
			Foreground(ColorFocus).
			Bold(true),

		StatusBar: lipgloss.NewStyle().
			Background(ColorBase01).
			Foreground(ColorBase05).
			Padding(0, 1),

		StatusModel: lipgloss.NewStyle().
			Foreground(ColorOrange).
			Bold(true),

		StatusState: lipgloss.NewStyle().
			Foreground(ColorInfo),

		StatusMuted: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// Label returns the label style for a sender name ("You", "AI", "System").
func (s *Styles) Label(sender string) lipgloss.Style {
	switch sender {
	case "You":
		return s.UserLabel
	case "AI":
		return s.AssistantLabel
	default:
		return s.SystemLabel
	}
}

// Body returns the body style for a sender name. System messages that carry
// an error get the error style.
func (s *Styles) Body(sender, text string) lipgloss.Style {
	switch sender {
	case "You":
		return s.UserMessage
	case "AI":
		return s.AssistantMessage
	}
	if strings.HasPrefix(text, "Error:") {
		return s.ErrorMessage
	}
	return s.SystemMessage
}
