package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for TUI components.
var (
	ColorPrimary = lipgloss.Color("#4f46e5") // Indigo
	ColorAccent  = lipgloss.Color("#27ae60") // Green
	ColorMuted   = lipgloss.Color("#95a5a6") // Gray
	ColorWarning = lipgloss.Color("#f39c12") // Amber
	ColorError   = lipgloss.Color("#e74c3c") // Red
	ColorInk     = lipgloss.Color("#e2e8f0") // Near white
)

// Text styles for consistent formatting.
var (
	// TitleStyle for main headings.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SectionStyle for plan section headings.
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginTop(1)

	// DayStyle for "Day N" headings.
	DayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	// ItemStyle for list items.
	ItemStyle = lipgloss.NewStyle().
			Foreground(ColorInk)

	// BoldStyle for **emphasized** spans.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	// TextStyle for plain paragraphs.
	TextStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle for warnings and inline validation messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// SelectedStyle for the focused item in lists and tabs.
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// UnselectedStyle for unfocused items.
	UnselectedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// CheckedStyle for selected chapters.
	CheckedStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	// HelpStyle for key hints.
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	// SpinnerStyle for spinner text.
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)
)

// Box styles for layout.
var (
	// BoxStyle for bordered containers.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(1, 2)

	// ErrorBoxStyle frames failure messages.
	ErrorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorError).
			Padding(1, 2)
)
