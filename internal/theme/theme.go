package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// Apply forces the light or dark palette. Any other name keeps the
// terminal's detected background.
func Apply(name string) {
	switch name {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ModalStyle frames the review gates drawn over a view.
var ModalStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.DoubleBorder()).
	BorderForeground(ColorMagenta)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ErrorStyle renders the inline error banner.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// NoticeStyle renders persistent informational notices.
var NoticeStyle = lipgloss.NewStyle().
	Foreground(ColorYellow).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorYellow).
	Padding(0, 1)

// SuccessStyle renders confirmations such as "email sent".
var SuccessStyle = lipgloss.NewStyle().
	Foreground(ColorGreen)

// TabStyle and ActiveTabStyle render the communications tab bar.
var (
	TabStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Padding(0, 2)
	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue).
			Underline(true).
			Padding(0, 2)
)

func badge() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Padding(0, 1)
}

// IncomingStatusStyle colors an incoming email by status. An unset or
// unknown status renders gray, as do the other badges below.
func IncomingStatusStyle(s model.IncomingStatus) lipgloss.Style {
	switch s {
	case model.IncomingUnread:
		return badge().Foreground(ColorBlue)
	case model.IncomingArchived:
		return badge().Foreground(ColorMagenta)
	case model.IncomingDeleted:
		return badge().Foreground(ColorRed)
	}
	return badge().Foreground(ColorGray)
}

// EmailStatusStyle colors an outgoing message by status.
func EmailStatusStyle(s model.EmailStatus) lipgloss.Style {
	switch s {
	case model.EmailSending:
		return badge().Foreground(ColorYellow)
	case model.EmailSent:
		return badge().Foreground(ColorGreen)
	case model.EmailFailed:
		return badge().Foreground(ColorRed)
	}
	return badge().Foreground(ColorGray)
}

// DealPriorityStyle colors an opportunity or proposal priority.
func DealPriorityStyle(p model.DealPriority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch p {
	case model.DealCritical:
		return base.Foreground(ColorRed)
	case model.DealHigh:
		return base.Foreground(ColorOrange)
	case model.DealMedium:
		return base.Foreground(ColorYellow)
	case model.DealLow:
		return base.Foreground(ColorBlue)
	}
	return base.Foreground(ColorGray)
}

// PriorityStyle colors an event or notification priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch p {
	case model.PriorityUrgent:
		return base.Foreground(ColorRed)
	case model.PriorityHigh:
		return base.Foreground(ColorOrange)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	}
	return base.Foreground(ColorGray)
}

// EventStatusStyle colors a calendar event by status.
func EventStatusStyle(s model.EventStatus) lipgloss.Style {
	switch s {
	case model.EventScheduled:
		return badge().Foreground(ColorBlue)
	case model.EventInProgress:
		return badge().Foreground(ColorYellow)
	case model.EventCompleted:
		return badge().Foreground(ColorGreen)
	case model.EventCancelled:
		return badge().Foreground(ColorRed)
	}
	return badge().Foreground(ColorGray)
}

// NotificationTypeStyle colors a notification by type.
func NotificationTypeStyle(t model.NotificationType) lipgloss.Style {
	switch t {
	case model.NotifyError:
		return badge().Foreground(ColorRed)
	case model.NotifyWarning, model.NotifyReminder:
		return badge().Foreground(ColorOrange)
	case model.NotifyEvent, model.NotifyEventUpdated, model.NotifyTask:
		return badge().Foreground(ColorMagenta)
	case model.NotifyEmail:
		return badge().Foreground(ColorGreen)
	case model.NotifySystem, model.NotifyInfo:
		return badge().Foreground(ColorBlue)
	}
	return badge().Foreground(ColorGray)
}
