package terminal

import "github.com/charmbracelet/lipgloss"

var (
	// State colors.
	colorActive   = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34d399"}
	colorStarting = lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#fbbf24"}
	colorInactive = lipgloss.AdaptiveColor{Light: "#64748b", Dark: "#94a3b8"}

	// UI colors.
	colorBright = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	colorDim    = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}
	colorLink   = lipgloss.AdaptiveColor{Light: "#4f46e5", Dark: "#818cf8"}
)

var (
	styleActiveBadge   = lipgloss.NewStyle().Foreground(colorActive).Bold(true)
	styleStartingBadge = lipgloss.NewStyle().Foreground(colorStarting).Bold(true)
	styleInactiveBadge = lipgloss.NewStyle().Foreground(colorInactive).Bold(true)

	styleTitle = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleMeta  = lipgloss.NewStyle().Foreground(colorDim)
	styleLink  = lipgloss.NewStyle().Foreground(colorLink)

	styleSeparator = lipgloss.NewStyle().Foreground(colorDim)
)
